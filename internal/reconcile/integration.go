package reconcile

import (
	"time"

	"github.com/mesh-intelligence/botsync/pkg/snapshot"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// Integrations merges the integration listing of a bot by identifier.
// Integrations of the bot the listing does not name are deleted.
func (r *Reconciler) Integrations(bot *types.Bot, snaps []snapshot.Integration) {
	if bot == nil || !r.live(bot) {
		r.missingContext(types.KindIntegration, "", "bot not in store")
		return
	}
	seen := make(map[string]bool, len(snaps))
	for i := range snaps {
		if in := r.Integration(bot, &snaps[i]); in != nil {
			seen[in.Key] = true
		}
	}
	for _, e := range r.store.Children(bot.LocalID, types.KindIntegration) {
		if !seen[e.Base().Key] {
			r.store.Delete(e)
		}
	}
}

// Integration upserts one integration under bot and reconciles its summary,
// assets, tested devices and revision blueprint when the snapshot carries
// them. It returns nil when the branch was skipped.
func (r *Reconciler) Integration(bot *types.Bot, snap *snapshot.Integration) *types.Integration {
	if snap == nil {
		return nil
	}
	if bot == nil || !r.live(bot) {
		r.missingContext(types.KindIntegration, snap.ID, "bot not in store")
		return nil
	}
	if snap.ID == "" {
		r.skip(types.KindIntegration, "", errMissingKey)
		return nil
	}
	created := r.store.Find(types.KindIntegration, snap.ID) == nil
	e, err := r.upsert(types.KindIntegration, snap.ID, bot)
	if err != nil {
		r.skip(types.KindIntegration, snap.ID, err)
		return nil
	}
	in := e.(*types.Integration)
	if created {
		in.HasRetrievedAssets = false
		in.HasRetrievedCommits = false
		in.HasRetrievedIssues = false
		in.LastSyncedAt = time.Time{}
	}

	set(&in.Rev, snap.Rev)
	set(&in.Number, snap.Number)
	set(&in.CurrentStep, snap.CurrentStep)
	set(&in.Result, snap.Result)
	set(&in.ShouldClean, snap.ShouldClean)
	setTime(&in.QueuedDate, snap.QueuedDate)
	setTime(&in.StartedTime, snap.StartedTime)
	setTime(&in.EndedTime, snap.EndedTime)
	set(&in.Duration, snap.Duration)
	set(&in.SuccessStreak, snap.SuccessStreak)

	if snap.BuildResultSummary != nil {
		r.buildResultSummary(in, snap.BuildResultSummary)
	}
	if snap.Assets != nil {
		r.assets(in, snap.Assets)
	}
	if snap.TestedDevices != nil {
		var ids []string
		for i := range snap.TestedDevices {
			if d := r.Device(&snap.TestedDevices[i]); d != nil {
				ids = append(ids, d.LocalID)
			}
		}
		r.syncLinks(types.LinkTestedOn, in, ids)
	}
	if snap.RevisionBlueprint != nil {
		r.revisionBlueprint(in, snap.RevisionBlueprint)
	}
	return in
}

func (r *Reconciler) buildResultSummary(in *types.Integration, snap *snapshot.BuildResultSummary) {
	e, err := r.singleton(in, types.KindBuildResultSummary)
	if err != nil {
		r.skip(types.KindBuildResultSummary, in.Key, err)
		return
	}
	s := e.(*types.BuildResultSummary)
	set(&s.ErrorCount, snap.ErrorCount)
	set(&s.ErrorChange, snap.ErrorChange)
	set(&s.WarningCount, snap.WarningCount)
	set(&s.WarningChange, snap.WarningChange)
	set(&s.AnalyzerWarningCount, snap.AnalyzerWarningCount)
	set(&s.AnalyzerWarningChange, snap.AnalyzerWarningChange)
	set(&s.TestsCount, snap.TestsCount)
	set(&s.TestsChange, snap.TestsChange)
	set(&s.TestFailureCount, snap.TestFailureCount)
	set(&s.TestFailureChange, snap.TestFailureChange)
	set(&s.ImprovedPerfTestCount, snap.ImprovedPerfTestCount)
	set(&s.RegressedPerfTestCount, snap.RegressedPerfTestCount)
	set(&s.CodeCoveragePercentage, snap.CodeCoveragePercentage)
	set(&s.CodeCoveragePercentageDelta, snap.CodeCoveragePercentageDelta)
}

// assets replaces the asset bundle contents. The snapshot describes the
// whole set, so assets it does not name are gone.
func (r *Reconciler) assets(in *types.Integration, snap *snapshot.Assets) {
	e, err := r.singleton(in, types.KindAssetBundle)
	if err != nil {
		r.skip(types.KindAssetBundle, in.Key, err)
		return
	}
	bundle := e.(*types.AssetBundle)
	r.clear(bundle, types.KindAsset)

	ordinal := 0
	add := func(role string, a *snapshot.Asset) {
		if a == nil {
			return
		}
		ae, err := r.store.Create(types.KindAsset, "", bundle.LocalID)
		if err != nil {
			r.skip(types.KindAsset, "", err)
			return
		}
		asset := ae.(*types.Asset)
		asset.Ordinal = ordinal
		asset.Role = role
		set(&asset.FileName, a.FileName)
		set(&asset.RelativePath, a.RelativePath)
		set(&asset.Size, a.Size)
		set(&asset.AllowAnonymousAccess, a.AllowAnonymousAccess)
		ordinal++
	}
	add(types.AssetBuildServiceLog, snap.BuildServiceLog)
	add(types.AssetSourceControlLog, snap.SourceControlLog)
	add(types.AssetXcodebuildLog, snap.XcodebuildLog)
	add(types.AssetXcodebuildOutput, snap.XcodebuildOutput)
	add(types.AssetArchive, snap.Archive)
	add(types.AssetProduct, snap.Product)
	for i := range snap.TriggerAssets {
		add(types.AssetTrigger, &snap.TriggerAssets[i])
	}
}
