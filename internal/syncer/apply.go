package syncer

import (
	"time"

	"github.com/mesh-intelligence/botsync/internal/reconcile"
	"github.com/mesh-intelligence/botsync/pkg/snapshot"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// apply reconciles a fetched plan into sess and stamps sync bookkeeping.
func (o *Orchestrator) apply(r *reconcile.Reconciler, sess Session, p *plan) {
	now := o.now().UTC()
	switch p.op {
	case OpSyncServer, OpSyncAll:
		r.Server(p.server, p.versions)
		r.Bots(p.server, p.bots)
		r.Devices(p.devices)
		p.server.LastSyncedAt = now
		if p.op == OpSyncAll {
			for i := range p.bots {
				if b, ok := sess.Find(types.KindBot, p.bots[i].ID).(*types.Bot); ok {
					b.LastSyncedAt = now
				}
				markIntegrations(sess, p.bots[i].Integrations, now)
			}
		}

	case OpSyncBot:
		if b := r.Bot(p.server, p.botSnap); b != nil {
			b.LastSyncedAt = now
			markIntegrations(sess, p.botSnap.Integrations, now)
		}

	case OpStartIntegration, OpSyncIntegration, OpCancelIntegration:
		if r.Integration(p.bot, p.integration) != nil {
			markIntegrations(sess, []snapshot.Integration{*p.integration}, now)
		}
	}

	for _, id := range p.details.ids() {
		in, ok := sess.Find(types.KindIntegration, id).(*types.Integration)
		if !ok {
			continue
		}
		d := p.details.m[id]
		if d.commits != nil {
			r.Commits(in, d.commits)
			in.HasRetrievedCommits = true
		}
		if d.issues != nil {
			r.Issues(in, d.issues)
			in.HasRetrievedIssues = true
		}
	}
}

// markIntegrations stamps the integrations just reconciled from snaps.
func markIntegrations(sess Session, snaps []snapshot.Integration, now time.Time) {
	for i := range snaps {
		in, ok := sess.Find(types.KindIntegration, snaps[i].ID).(*types.Integration)
		if !ok {
			continue
		}
		in.LastSyncedAt = now
		if in.Completed() && snaps[i].Assets != nil {
			in.HasRetrievedAssets = true
		}
	}
}
