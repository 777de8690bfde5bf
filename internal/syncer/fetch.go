package syncer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/botsync/pkg/snapshot"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// plan is everything an operation fetched, plus the local entities it
// resolved before fetching. Fetching never mutates the session.
type plan struct {
	op Op

	server *types.Server
	bot    *types.Bot

	versions    *snapshot.Versions
	devices     []snapshot.Device
	bots        []snapshot.Bot
	botSnap     *snapshot.Bot
	integration *snapshot.Integration

	details detailSet
}

// details holds the records fetched for one completed integration. A nil
// field was not fetched.
type details struct {
	commits []snapshot.IntegrationCommits
	issues  *snapshot.IssueSet
}

type detailSet struct {
	mu sync.Mutex
	m  map[string]*details
}

func (d *detailSet) put(id string, v *details) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.m == nil {
		d.m = make(map[string]*details)
	}
	d.m[id] = v
}

func (d *detailSet) ids() []string {
	ids := make([]string, 0, len(d.m))
	for id := range d.m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (o *Orchestrator) fetch(ctx context.Context, sess Session, req Request) (*plan, error) {
	p := &plan{op: req.Op}
	switch req.Op {
	case OpSyncServer, OpSyncAll:
		srv, src, err := o.resolveServer(sess, req.Server)
		if err != nil {
			return nil, err
		}
		p.server = srv
		if err := o.fetchServer(ctx, src, sess, p, req.Op == OpSyncAll); err != nil {
			return nil, err
		}

	case OpSyncBot:
		srv, src, err := o.resolveServer(sess, req.Server)
		if err != nil {
			return nil, err
		}
		p.server = srv
		b, err := src.Bot(ctx, req.Bot)
		if err != nil {
			return nil, err
		}
		if err := o.fetchBotParts(ctx, src, sess, b, &p.details); err != nil {
			return nil, err
		}
		p.botSnap = b

	case OpStartIntegration:
		srv, src, err := o.resolveServer(sess, req.Server)
		if err != nil {
			return nil, err
		}
		p.server = srv
		bot := findBot(sess, srv, req.Bot)
		if bot == nil {
			return nil, fmt.Errorf("%w: bot %q on %s", types.ErrMissingRelatedEntity, req.Bot, srv.FQDN())
		}
		p.bot = bot
		in, err := src.StartIntegration(ctx, req.Bot)
		if err != nil {
			return nil, err
		}
		p.integration = in

	case OpSyncIntegration, OpCancelIntegration:
		bot, src, err := o.resolveIntegration(sess, req.Integration)
		if err != nil {
			return nil, err
		}
		p.bot = bot
		if req.Op == OpCancelIntegration {
			if err := src.CancelIntegration(ctx, req.Integration); err != nil {
				return nil, err
			}
		}
		in, err := src.Integration(ctx, req.Integration)
		if err != nil {
			return nil, err
		}
		if err := o.fetchDetails(ctx, src, sess, in, &p.details); err != nil {
			return nil, err
		}
		p.integration = in
	}
	return p, nil
}

func (o *Orchestrator) fetchServer(ctx context.Context, src Source, sess Session, p *plan, deep bool) error {
	v, err := src.Versions(ctx)
	if err != nil {
		return err
	}
	bots, err := src.Bots(ctx)
	if err != nil {
		return err
	}
	devices, err := src.Devices(ctx)
	if err != nil {
		return err
	}
	if devices == nil {
		devices = []snapshot.Device{}
	}
	p.versions, p.bots, p.devices = v, bots, devices
	if !deep {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i := range p.bots {
		b := &p.bots[i]
		g.Go(func() error {
			return o.fetchBotParts(gctx, src, sess, b, &p.details)
		})
	}
	return g.Wait()
}

// fetchBotParts fills in the statistics and integrations of b and fetches
// the details of its completed integrations.
func (o *Orchestrator) fetchBotParts(ctx context.Context, src Source, sess Session, b *snapshot.Bot, det *detailSet) error {
	stats, err := src.Stats(ctx, b.ID)
	if err != nil {
		return err
	}
	ints, err := src.Integrations(ctx, b.ID, 0)
	if err != nil {
		return err
	}
	if ints == nil {
		ints = []snapshot.Integration{}
	}
	b.Stats = stats
	b.Integrations = ints
	for i := range ints {
		if err := o.fetchDetails(ctx, src, sess, &ints[i], det); err != nil {
			return err
		}
	}
	return nil
}

// fetchDetails fetches the commits and issues of a completed integration
// unless the store already holds them.
func (o *Orchestrator) fetchDetails(ctx context.Context, src Source, sess Session, snap *snapshot.Integration, det *detailSet) error {
	var local *types.Integration
	if e := sess.Find(types.KindIntegration, snap.ID); e != nil {
		local = e.(*types.Integration)
	}
	completed := local != nil && local.Completed()
	if snap.CurrentStep != nil {
		completed = *snap.CurrentStep == types.StepCompleted
	}
	if !completed {
		return nil
	}

	d := &details{}
	if local == nil || !local.HasRetrievedCommits {
		commits, err := src.Commits(ctx, snap.ID)
		if err != nil {
			return err
		}
		if commits == nil {
			commits = []snapshot.IntegrationCommits{}
		}
		d.commits = commits
	}
	if local == nil || !local.HasRetrievedIssues {
		issues, err := src.Issues(ctx, snap.ID)
		if err != nil {
			return err
		}
		d.issues = issues
	}
	if d.commits != nil || d.issues != nil {
		det.put(snap.ID, d)
	}
	return nil
}

func (o *Orchestrator) resolveServer(sess Session, fqdn string) (*types.Server, Source, error) {
	e := sess.Find(types.KindServer, fqdn)
	if e == nil {
		return nil, nil, fmt.Errorf("%w: server %q", types.ErrMissingRelatedEntity, fqdn)
	}
	src, err := o.dial(fqdn)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: endpoint for %s: %w", types.ErrMissingRelatedEntity, fqdn, err)
	}
	return e.(*types.Server), src, nil
}

// resolveIntegration walks integration → bot → server to find the endpoint
// an integration lives on.
func (o *Orchestrator) resolveIntegration(sess Session, id string) (*types.Bot, Source, error) {
	in := sess.Find(types.KindIntegration, id)
	if in == nil {
		return nil, nil, fmt.Errorf("%w: integration %q", types.ErrMissingRelatedEntity, id)
	}
	bot, ok := sess.Get(in.Base().OwnerID).(*types.Bot)
	if !ok {
		return nil, nil, fmt.Errorf("%w: bot of integration %q", types.ErrMissingRelatedEntity, id)
	}
	srv, ok := sess.Get(bot.OwnerID).(*types.Server)
	if !ok {
		return nil, nil, fmt.Errorf("%w: server of bot %q", types.ErrMissingRelatedEntity, bot.Key)
	}
	_, src, err := o.resolveServer(sess, srv.FQDN())
	if err != nil {
		return nil, nil, err
	}
	return bot, src, nil
}

// serverOfIntegration walks integration → bot → server in the stored graph.
func serverOfIntegration(sess Session, id string) *types.Server {
	in := sess.Find(types.KindIntegration, id)
	if in == nil {
		return nil
	}
	bot, ok := sess.Get(in.Base().OwnerID).(*types.Bot)
	if !ok {
		return nil
	}
	srv, _ := sess.Get(bot.OwnerID).(*types.Server)
	return srv
}

func findBot(sess Session, srv *types.Server, id string) *types.Bot {
	b, ok := sess.Find(types.KindBot, id).(*types.Bot)
	if !ok || b.OwnerID != srv.LocalID {
		return nil
	}
	return b
}
