package reconcile

import (
	"github.com/mesh-intelligence/botsync/pkg/snapshot"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// Server copies the version information of a server.
func (r *Reconciler) Server(srv *types.Server, v *snapshot.Versions) {
	if srv == nil || !r.live(srv) {
		r.missingContext(types.KindServer, "", "server not in store")
		return
	}
	if v == nil {
		return
	}
	set(&srv.ServerVersion, v.ServerVersion)
	set(&srv.XcodeVersion, v.XcodeVersion)
	set(&srv.XcodeServerVersion, v.XcodeServerVersion)
	set(&srv.OSVersion, v.OSVersion)
}

// Bots merges the complete bot listing of a server. Bots the listing does
// not name are deleted together with everything they own.
func (r *Reconciler) Bots(srv *types.Server, bots []snapshot.Bot) {
	if srv == nil || !r.live(srv) {
		r.missingContext(types.KindBot, "", "server not in store")
		return
	}
	seen := make(map[string]bool, len(bots))
	for i := range bots {
		if b := r.Bot(srv, &bots[i]); b != nil {
			seen[b.Key] = true
		}
	}
	for _, e := range r.store.Children(srv.LocalID, types.KindBot) {
		if !seen[e.Base().Key] {
			r.store.Delete(e)
		}
	}
}

// Bot upserts one bot under srv and reconciles the parts of it the snapshot
// carries. It returns nil when the branch was skipped.
func (r *Reconciler) Bot(srv *types.Server, snap *snapshot.Bot) *types.Bot {
	if snap == nil {
		return nil
	}
	if srv == nil || !r.live(srv) {
		r.missingContext(types.KindBot, snap.ID, "server not in store")
		return nil
	}
	if snap.ID == "" {
		r.skip(types.KindBot, "", errMissingKey)
		return nil
	}
	e, err := r.upsert(types.KindBot, snap.ID, srv)
	if err != nil {
		r.skip(types.KindBot, snap.ID, err)
		return nil
	}
	bot := e.(*types.Bot)

	set(&bot.Rev, snap.Rev)
	set(&bot.Name, snap.Name)
	set(&bot.TinyID, snap.TinyID)
	set(&bot.Type, snap.Type)
	set(&bot.IntegrationCounter, snap.IntegrationCounter)
	set(&bot.RequiresUpgrade, snap.RequiresUpgrade)

	if snap.Configuration != nil {
		r.configuration(bot, snap.Configuration)
	}
	if snap.Stats != nil {
		r.Stats(bot, snap.Stats)
	}
	if snap.Integrations != nil {
		r.Integrations(bot, snap.Integrations)
	}
	return bot
}

// Stats reconciles the statistics singleton of a bot.
func (r *Reconciler) Stats(bot *types.Bot, snap *snapshot.Stats) {
	if snap == nil {
		return
	}
	if bot == nil || !r.live(bot) {
		r.missingContext(types.KindStats, "", "bot not in store")
		return
	}
	e, err := r.singleton(bot, types.KindStats)
	if err != nil {
		r.skip(types.KindStats, bot.Key, err)
		return
	}
	st := e.(*types.Stats)

	set(&st.NumberOfIntegrations, snap.NumberOfIntegrations)
	set(&st.NumberOfCommits, snap.NumberOfCommits)
	set(&st.NumberOfSuccessfulIntegrations, snap.NumberOfSuccessfulIntegrations)
	set(&st.TestAdditionRate, snap.TestAdditionRate)
	set(&st.CodeCoveragePercentageDelta, snap.CodeCoveragePercentageDelta)
	setTime(&st.SinceDate, snap.SinceDate)

	setBreakdown(&st.AverageIntegrationTime, snap.AverageIntegrationTime)
	setBreakdown(&st.Errors, snap.Errors)
	setBreakdown(&st.Warnings, snap.Warnings)
	setBreakdown(&st.AnalysisWarnings, snap.AnalysisWarnings)
	setBreakdown(&st.TestFailures, snap.TestFailures)
	setBreakdown(&st.Tests, snap.Tests)
	setBreakdown(&st.RegressedPerfTests, snap.RegressedPerfTests)
	setBreakdown(&st.ImprovedPerfTests, snap.ImprovedPerfTests)

	if ref := snap.LastCleanIntegration; ref != nil {
		st.LastCleanIntegrationID = ref.IntegrationID
		setTime(&st.LastCleanIntegrationEnded, ref.EndedTime)
	}
	if ref := snap.BestSuccessStreak; ref != nil {
		st.BestSuccessStreakID = ref.IntegrationID
		set(&st.BestSuccessStreakCount, ref.Count)
	}
}

func setBreakdown(dst *types.Breakdown, src *snapshot.Breakdown) {
	if src == nil {
		return
	}
	*dst = types.Breakdown{
		Count:  src.Count,
		Sum:    src.Sum,
		Min:    src.Min,
		Max:    src.Max,
		Avg:    src.Avg,
		StdDev: src.StdDev,
	}
}
