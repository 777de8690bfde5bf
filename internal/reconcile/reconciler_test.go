package reconcile

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/botsync/internal/graph"
	"github.com/mesh-intelligence/botsync/pkg/snapshot"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

var ptr = snapshot.Ptr[string]

func newTestGraph() *graph.Graph {
	n := 0
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return graph.New(
		graph.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%04d", n)
		}),
		graph.WithClock(func() time.Time {
			return t0.Add(time.Duration(n) * time.Second)
		}),
	)
}

// fixture is a graph holding server "ci.example.com" with bot "bot-1".
type fixture struct {
	g   *graph.Graph
	r   *Reconciler
	srv *types.Server
	bot *types.Bot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g := newTestGraph()
	srv, err := g.Create(types.KindServer, "ci.example.com", "")
	require.NoError(t, err)
	bot, err := g.Create(types.KindBot, "bot-1", srv.Base().LocalID)
	require.NoError(t, err)
	return &fixture{g: g, r: New(g), srv: srv.(*types.Server), bot: bot.(*types.Bot)}
}

// census counts entities per kind plus links.
func census(g *graph.Graph) map[string]int {
	out := map[string]int{"links": len(g.Links())}
	for _, k := range types.Kinds() {
		if n := len(g.All(k)); n > 0 {
			out[string(k)] = n
		}
	}
	return out
}

func keysOf(es []types.Entity) []string {
	var out []string
	for _, e := range es {
		out = append(out, e.Base().Key)
	}
	return out
}

func richBot() *snapshot.Bot {
	return &snapshot.Bot{
		ID:   "bot-1",
		Name: ptr("Nightly"),
		Type: snapshot.Ptr(1),
		Configuration: &snapshot.Configuration{
			SchemeName:         ptr("App"),
			PerformsTestAction: snapshot.Ptr(true),
			Triggers: []snapshot.Trigger{
				{Name: ptr("notify"), Type: snapshot.Ptr(2), EmailConfiguration: &snapshot.EmailConfiguration{EmailCommitters: snapshot.Ptr(true)}},
				{Name: ptr("script"), Type: snapshot.Ptr(1), ScriptBody: ptr("make lint")},
			},
			DeviceSpecification: &snapshot.DeviceSpecification{
				Filters:           []snapshot.Filter{{FilterType: snapshot.Ptr(3), Platform: &snapshot.Platform{Identifier: ptr("ios")}}},
				DeviceIdentifiers: []string{"dev-1", "dev-2"},
			},
			SourceControlBlueprint: &snapshot.RevisionBlueprint{
				Name:               ptr("App"),
				RemoteRepositories: []snapshot.RemoteRepository{{Identifier: "repo-a", URL: ptr("git@example.com:app.git")}},
			},
		},
		Stats: &snapshot.Stats{NumberOfIntegrations: snapshot.Ptr(9), Tests: &snapshot.Breakdown{Count: 4}},
		Integrations: []snapshot.Integration{
			{
				ID:                 "int-1",
				Number:             snapshot.Ptr(5),
				Result:             ptr(types.ResultSucceeded),
				CurrentStep:        ptr(types.StepCompleted),
				BuildResultSummary: &snapshot.BuildResultSummary{WarningCount: snapshot.Ptr(2)},
				Assets: &snapshot.Assets{
					BuildServiceLog: &snapshot.Asset{FileName: ptr("build.log")},
					Archive:         &snapshot.Asset{FileName: ptr("App.xcarchive")},
				},
				TestedDevices: []snapshot.Device{{ID: "dev-1", Name: ptr("iPhone")}},
				RevisionBlueprint: &snapshot.RevisionBlueprint{
					Locations: map[string]snapshot.Location{
						"repo-a": {Revision: ptr("aaa111"), Branch: ptr("main")},
					},
				},
			},
			{ID: "int-2", Number: snapshot.Ptr(6), CurrentStep: ptr(types.StepBuilding)},
		},
	}
}

func TestScenarioBotGainsIntegration(t *testing.T) {
	f := newFixture(t)
	snap := &snapshot.Bot{
		ID: "bot-1",
		Integrations: []snapshot.Integration{
			{ID: "int-1", Number: snapshot.Ptr(5), Result: ptr("succeeded")},
		},
	}

	f.r.Bot(f.srv, snap)
	ints := f.g.Children(f.bot.LocalID, types.KindIntegration)
	require.Len(t, ints, 1)
	in := ints[0].(*types.Integration)
	assert.Equal(t, "int-1", in.Key)
	assert.Equal(t, 5, in.Number)
	assert.Equal(t, "succeeded", in.Result)

	before := census(f.g)
	f.r.Bot(f.srv, snap)
	assert.Equal(t, before, census(f.g))
	assert.Equal(t, []types.Entity{in}, f.g.Children(f.bot.LocalID, types.KindIntegration))
	assert.Empty(t, f.r.Anomalies())
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := newFixture(t)

	f.r.Bot(f.srv, richBot())
	once := census(f.g)
	f.r.Bot(f.srv, richBot())

	assert.Equal(t, once, census(f.g))
	assert.Equal(t, map[string]int{
		"links":                5, // 2 targets, 1 builds_from, 1 tested_on, 1 revision_of
		"server":               1,
		"device":               2,
		"repository":           1,
		"bot":                  1,
		"stats":                1,
		"configuration":        1,
		"trigger":              2,
		"email_configuration":  1,
		"device_specification": 1,
		"filter":               1,
		"commit":               1,
		"integration":          2,
		"build_result_summary": 1,
		"asset_bundle":         1,
		"asset":                2,
		"revision_blueprint":   1,
	}, once)
	assert.Empty(t, f.r.Anomalies())
}

func TestUpsertUpdatesInPlace(t *testing.T) {
	f := newFixture(t)
	f.r.Bot(f.srv, richBot())
	in := f.g.Find(types.KindIntegration, "int-2").(*types.Integration)
	dev := f.g.Find(types.KindDevice, "dev-1")
	total := f.g.Len()

	snap := richBot()
	snap.Name = ptr("Nightly 2")
	snap.Integrations[1].CurrentStep = ptr(types.StepCompleted)
	snap.Integrations[1].Result = ptr(types.ResultBuildErrors)
	snap.Integrations[0].TestedDevices[0].OSVersion = ptr("17.4")
	f.r.Bot(f.srv, snap)

	assert.Same(t, in, f.g.Find(types.KindIntegration, "int-2"))
	assert.Equal(t, types.StepCompleted, in.CurrentStep)
	assert.Equal(t, types.ResultBuildErrors, in.Result)
	assert.Equal(t, "Nightly 2", f.bot.Name)
	assert.Same(t, f.bot, f.g.Find(types.KindBot, "bot-1"))
	assert.Same(t, dev, f.g.Find(types.KindDevice, "dev-1"))
	assert.Equal(t, "17.4", dev.(*types.Device).OSVersion)
	assert.Equal(t, total, f.g.Len())
}

func TestIntegrationsPruneByKey(t *testing.T) {
	f := newFixture(t)
	list := func(ids ...string) []snapshot.Integration {
		var out []snapshot.Integration
		for _, id := range ids {
			out = append(out, snapshot.Integration{
				ID:                 id,
				BuildResultSummary: &snapshot.BuildResultSummary{ErrorCount: snapshot.Ptr(0)},
			})
		}
		return out
	}

	f.r.Integrations(f.bot, list("A", "B", "C"))
	b := f.g.Find(types.KindIntegration, "B")
	require.NotNil(t, b)
	summary := f.g.Children(b.Base().LocalID, types.KindBuildResultSummary)
	require.Len(t, summary, 1)

	f.r.Integrations(f.bot, list("A", "C"))
	assert.Equal(t, []string{"A", "C"}, keysOf(f.g.Children(f.bot.LocalID, types.KindIntegration)))
	assert.Nil(t, f.g.Find(types.KindIntegration, "B"))
	assert.Nil(t, f.g.Get(summary[0].Base().LocalID), "owned children go with their owner")
}

func TestBotsPruneByKey(t *testing.T) {
	f := newFixture(t)
	f.r.Bots(f.srv, []snapshot.Bot{{ID: "bot-1"}, {ID: "bot-2", Name: ptr("Release")}})
	assert.Equal(t, []string{"bot-1", "bot-2"}, keysOf(f.g.Children(f.srv.LocalID, types.KindBot)))

	f.r.Bots(f.srv, []snapshot.Bot{{ID: "bot-2"}})
	assert.Equal(t, []string{"bot-2"}, keysOf(f.g.Children(f.srv.LocalID, types.KindBot)))
	assert.Equal(t, "Release", f.g.Find(types.KindBot, "bot-2").(*types.Bot).Name)
}

func TestTriggersReplaceAll(t *testing.T) {
	f := newFixture(t)
	f.r.Bot(f.srv, richBot())
	cfg := f.g.Children(f.bot.LocalID, types.KindConfiguration)[0]
	require.Len(t, f.g.Children(cfg.Base().LocalID, types.KindTrigger), 2)

	f.r.Bot(f.srv, &snapshot.Bot{
		ID: "bot-1",
		Configuration: &snapshot.Configuration{
			Triggers: []snapshot.Trigger{{Name: ptr("only"), Phase: snapshot.Ptr(2)}},
		},
	})

	triggers := f.g.Children(cfg.Base().LocalID, types.KindTrigger)
	require.Len(t, triggers, 1)
	tr := triggers[0].(*types.Trigger)
	assert.Equal(t, "only", tr.Name)
	assert.Equal(t, 2, tr.Phase)
	assert.Empty(t, tr.ScriptBody)
	assert.Empty(t, f.g.All(types.KindEmailConfiguration), "email configuration went with its trigger")
	assert.Equal(t, "App", cfg.(*types.Configuration).SchemeName, "absent fields are kept")
	assert.Len(t, f.g.All(types.KindFilter), 1, "absent device specification is kept")
}

func TestRevisionBlueprintCreatedOncePerPair(t *testing.T) {
	f := newFixture(t)
	f.r.Bot(f.srv, richBot())
	in := f.g.Find(types.KindIntegration, "int-1").(*types.Integration)
	assert.Equal(t, "aaa111", in.Revisions["repo-a"].Revision)

	// The commit listing names the same hash under the same repository.
	f.r.Commits(in, []snapshot.IntegrationCommits{{
		IntegrationID: "int-1",
		Commits: map[string][]snapshot.Commit{
			"repo-a": {{Hash: "aaa111", Message: ptr("fix build")}},
		},
	}})

	bps := f.g.Children(in.LocalID, types.KindRevisionBlueprint)
	require.Len(t, bps, 1)
	commit := f.g.Find(types.KindCommit, "aaa111")
	require.NotNil(t, commit)
	assert.Equal(t, []string{commit.Base().LocalID}, f.g.Linked(types.LinkRevisionOf, bps[0].Base().LocalID))
	assert.Equal(t, "fix build", commit.(*types.Commit).Message)
	assert.Len(t, f.g.All(types.KindCommit), 1)
}

func TestCommitsSharedAcrossIntegrations(t *testing.T) {
	f := newFixture(t)
	f.r.Integrations(f.bot, []snapshot.Integration{{ID: "int-1"}, {ID: "int-2"}})
	in1 := f.g.Find(types.KindIntegration, "int-1").(*types.Integration)
	in2 := f.g.Find(types.KindIntegration, "int-2").(*types.Integration)
	listing := []snapshot.IntegrationCommits{{
		Commits: map[string][]snapshot.Commit{"repo-a": {{Hash: "abc"}}},
	}}

	f.r.Commits(in1, listing)
	f.r.Commits(in2, listing)

	assert.Len(t, f.g.All(types.KindCommit), 1)
	assert.Len(t, f.g.All(types.KindRevisionBlueprint), 2)
}

func TestCommitsPruneUnreportedBlueprints(t *testing.T) {
	f := newFixture(t)
	f.r.Integrations(f.bot, []snapshot.Integration{{ID: "int-1"}, {ID: "int-2"}})
	in1 := f.g.Find(types.KindIntegration, "int-1").(*types.Integration)
	in2 := f.g.Find(types.KindIntegration, "int-2").(*types.Integration)

	f.r.Commits(in1, []snapshot.IntegrationCommits{{
		Commits: map[string][]snapshot.Commit{"repo-a": {
			{Hash: "old", Changes: []snapshot.CommitChange{{FilePath: "a.go"}}},
			{Hash: "shared"},
			{Hash: "new"},
		}},
	}})
	f.r.Commits(in2, []snapshot.IntegrationCommits{{
		Commits: map[string][]snapshot.Commit{"repo-a": {{Hash: "shared"}}},
	}})

	f.r.Commits(in1, []snapshot.IntegrationCommits{{
		Commits: map[string][]snapshot.Commit{"repo-a": {{Hash: "new"}}},
	}})

	assert.Nil(t, f.g.Find(types.KindCommit, "old"), "orphaned commit is deleted")
	assert.Empty(t, f.g.All(types.KindCommitChange))
	assert.NotNil(t, f.g.Find(types.KindCommit, "shared"), "commit still joined to int-2 is kept")
	assert.Len(t, f.g.Children(in1.LocalID, types.KindRevisionBlueprint), 1)
	assert.Len(t, f.g.Children(in2.LocalID, types.KindRevisionBlueprint), 1)
}

func TestCommitsCheckTheirRepository(t *testing.T) {
	f := newFixture(t)
	f.r.Integrations(f.bot, []snapshot.Integration{{ID: "int-1"}})
	in := f.g.Find(types.KindIntegration, "int-1").(*types.Integration)

	f.r.Commits(in, []snapshot.IntegrationCommits{{
		Commits: map[string][]snapshot.Commit{"repo-a": {
			{Hash: "same", RepositoryID: ptr("repo-a")},
			{Hash: "unnamed"},
			{Hash: "stray", RepositoryID: ptr("repo-b")},
		}},
	}})

	assert.NotNil(t, f.g.Find(types.KindCommit, "same"))
	assert.NotNil(t, f.g.Find(types.KindCommit, "unnamed"))
	assert.Nil(t, f.g.Find(types.KindCommit, "stray"))
	require.Len(t, f.r.Anomalies(), 1)
	assert.ErrorIs(t, f.r.Anomalies()[0].Err, types.ErrInvalidOwner)
	assert.Equal(t, "stray", f.r.Anomalies()[0].Key)
	assert.Len(t, f.g.Children(in.LocalID, types.KindRevisionBlueprint), 2)
}

func TestCommitDetailsReplaceChanges(t *testing.T) {
	f := newFixture(t)
	f.r.Integrations(f.bot, []snapshot.Integration{{ID: "int-1"}})
	in := f.g.Find(types.KindIntegration, "int-1").(*types.Integration)
	commit := func(paths ...string) []snapshot.IntegrationCommits {
		var changes []snapshot.CommitChange
		for _, p := range paths {
			changes = append(changes, snapshot.CommitChange{FilePath: p, Status: snapshot.Ptr(1)})
		}
		return []snapshot.IntegrationCommits{{
			Commits: map[string][]snapshot.Commit{"repo-a": {{
				Hash:        "abc",
				Contributor: &snapshot.Contributor{Name: ptr("ada"), Emails: []string{"ada@example.com"}},
				Changes:     changes,
			}}},
		}}
	}

	f.r.Commits(in, commit("a.go", "b.go"))
	f.r.Commits(in, commit("c.go"))

	c := f.g.Find(types.KindCommit, "abc")
	changes := f.g.Children(c.Base().LocalID, types.KindCommitChange)
	require.Len(t, changes, 1)
	assert.Equal(t, "c.go", changes[0].(*types.CommitChange).FilePath)
	who := f.g.Children(c.Base().LocalID, types.KindContributor)
	require.Len(t, who, 1)
	assert.Equal(t, []string{"ada@example.com"}, who[0].(*types.Contributor).Emails)
	repo := f.g.Find(types.KindRepository, "repo-a")
	assert.Equal(t, repo, f.g.Owner(c))
}

func TestLocalFlagsSurviveUpdates(t *testing.T) {
	f := newFixture(t)
	f.r.Bot(f.srv, richBot())
	in := f.g.Find(types.KindIntegration, "int-1").(*types.Integration)
	synced := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	in.HasRetrievedAssets = true
	in.HasRetrievedCommits = true
	in.LastSyncedAt = synced

	snap := richBot()
	snap.Integrations[0].Result = ptr(types.ResultWarnings)
	f.r.Bot(f.srv, snap)

	assert.Equal(t, types.ResultWarnings, in.Result)
	assert.True(t, in.HasRetrievedAssets)
	assert.True(t, in.HasRetrievedCommits)
	assert.False(t, in.HasRetrievedIssues)
	assert.Equal(t, synced, in.LastSyncedAt)
}

func TestAbsentCollectionsAreNotPruned(t *testing.T) {
	f := newFixture(t)
	f.r.Bot(f.srv, richBot())
	before := census(f.g)

	f.r.Bot(f.srv, &snapshot.Bot{ID: "bot-1"})
	f.r.Integration(f.bot, &snapshot.Integration{ID: "int-1"})

	assert.Equal(t, before, census(f.g))
	assert.Equal(t, "Nightly", f.bot.Name)
}

func TestEmptyCollectionsArePruned(t *testing.T) {
	f := newFixture(t)
	f.r.Bot(f.srv, richBot())

	f.r.Integration(f.bot, &snapshot.Integration{
		ID:            "int-1",
		TestedDevices: []snapshot.Device{},
		Assets:        &snapshot.Assets{},
	})
	f.r.Bot(f.srv, &snapshot.Bot{ID: "bot-1", Integrations: []snapshot.Integration{}})

	assert.Empty(t, f.g.All(types.KindIntegration))
	assert.Empty(t, f.g.All(types.KindAsset))
	assert.Len(t, f.g.All(types.KindDevice), 2, "unlinked devices are not deleted")
}

func TestTestedDevicesReconciledByDifference(t *testing.T) {
	f := newFixture(t)
	in := f.r.Integration(f.bot, &snapshot.Integration{
		ID:            "int-1",
		TestedDevices: []snapshot.Device{{ID: "d1"}, {ID: "d2"}},
	})
	require.NotNil(t, in)
	assert.Len(t, f.g.Linked(types.LinkTestedOn, in.LocalID), 2)

	f.r.Integration(f.bot, &snapshot.Integration{
		ID:            "int-1",
		TestedDevices: []snapshot.Device{{ID: "d2"}, {ID: "d3"}},
	})

	d1 := f.g.Find(types.KindDevice, "d1")
	require.NotNil(t, d1, "referenced entity survives unlinking")
	assert.Empty(t, f.g.LinkedFrom(types.LinkTestedOn, d1.Base().LocalID))
	var linked []string
	for _, id := range f.g.Linked(types.LinkTestedOn, in.LocalID) {
		linked = append(linked, f.g.Get(id).Base().Key)
	}
	assert.ElementsMatch(t, []string{"d2", "d3"}, linked)
}

func TestDevicesListingKeepsReferencedDevices(t *testing.T) {
	f := newFixture(t)
	f.r.Integration(f.bot, &snapshot.Integration{ID: "int-1", TestedDevices: []snapshot.Device{{ID: "used"}}})
	f.r.Devices([]snapshot.Device{{ID: "used"}, {ID: "idle"}, {ID: "stays", Name: ptr("Mac")}})
	require.Len(t, f.g.All(types.KindDevice), 3)

	f.r.Devices([]snapshot.Device{{ID: "stays"}})

	assert.NotNil(t, f.g.Find(types.KindDevice, "used"))
	assert.Nil(t, f.g.Find(types.KindDevice, "idle"))
	assert.Equal(t, "Mac", f.g.Find(types.KindDevice, "stays").(*types.Device).Name)
}

func TestMissingContextIsContained(t *testing.T) {
	g := newTestGraph()
	r := New(g)
	orphan := &types.Server{}
	orphan.LocalID = "not-in-graph"

	assert.Nil(t, r.Bot(nil, &snapshot.Bot{ID: "bot-1"}))
	assert.Nil(t, r.Bot(orphan, &snapshot.Bot{ID: "bot-1"}))
	assert.Nil(t, r.Integration(nil, &snapshot.Integration{ID: "int-1"}))
	r.Commits(nil, []snapshot.IntegrationCommits{{}})
	r.Issues(nil, &snapshot.IssueSet{})

	assert.Zero(t, g.Len())
	anomalies := r.Anomalies()
	require.Len(t, anomalies, 5)
	for _, a := range anomalies {
		assert.ErrorIs(t, a.Err, types.ErrMissingContext)
	}
}

func TestMalformedBranchDoesNotAbortSiblings(t *testing.T) {
	f := newFixture(t)
	f.r.Bot(f.srv, &snapshot.Bot{
		ID: "bot-1",
		Integrations: []snapshot.Integration{
			{ID: "int-1"},
			{Number: snapshot.Ptr(2)},
			{ID: "int-3", RevisionBlueprint: &snapshot.RevisionBlueprint{
				Locations: map[string]snapshot.Location{
					"repo-a": {Branch: ptr("main")},
					"repo-b": {Revision: ptr("bbb")},
				},
			}},
		},
	})

	assert.Equal(t, []string{"int-1", "int-3"}, keysOf(f.g.Children(f.bot.LocalID, types.KindIntegration)))
	assert.NotNil(t, f.g.Find(types.KindCommit, "bbb"))
	anomalies := f.r.Anomalies()
	require.Len(t, anomalies, 2)
	assert.Equal(t, types.KindIntegration, anomalies[0].Kind)
	assert.Equal(t, types.KindCommit, anomalies[1].Kind)
	assert.Equal(t, "repo-a", anomalies[1].Key)
}

func TestIntegrationUnderAnotherBotIsRefused(t *testing.T) {
	f := newFixture(t)
	other, err := f.g.Create(types.KindBot, "bot-2", f.srv.LocalID)
	require.NoError(t, err)
	f.r.Integration(f.bot, &snapshot.Integration{ID: "int-1", Number: snapshot.Ptr(1)})

	got := f.r.Integration(other.(*types.Bot), &snapshot.Integration{ID: "int-1", Number: snapshot.Ptr(9)})

	assert.Nil(t, got)
	assert.Equal(t, 1, f.g.Find(types.KindIntegration, "int-1").(*types.Integration).Number)
	require.Len(t, f.r.Anomalies(), 1)
	assert.ErrorIs(t, f.r.Anomalies()[0].Err, types.ErrInvalidOwner)
}

func TestServerVersionsAndStats(t *testing.T) {
	f := newFixture(t)
	f.r.Server(f.srv, &snapshot.Versions{XcodeVersion: ptr("15.2"), OSVersion: ptr("14.3")})
	f.r.Stats(f.bot, &snapshot.Stats{
		NumberOfCommits:   snapshot.Ptr(12),
		BestSuccessStreak: &snapshot.IntegrationRef{IntegrationID: "int-9", Count: snapshot.Ptr(4)},
	})
	f.r.Stats(f.bot, &snapshot.Stats{NumberOfIntegrations: snapshot.Ptr(30)})

	assert.Equal(t, "15.2", f.srv.XcodeVersion)
	assert.Equal(t, "14.3", f.srv.OSVersion)
	stats := f.g.Children(f.bot.LocalID, types.KindStats)
	require.Len(t, stats, 1)
	st := stats[0].(*types.Stats)
	assert.Equal(t, 12, st.NumberOfCommits)
	assert.Equal(t, 30, st.NumberOfIntegrations)
	assert.Equal(t, "int-9", st.BestSuccessStreakID)
	assert.Equal(t, 4, st.BestSuccessStreakCount)
}

func TestConfigurationLinks(t *testing.T) {
	f := newFixture(t)
	f.r.Bot(f.srv, richBot())
	cfg := f.g.Children(f.bot.LocalID, types.KindConfiguration)[0]
	spec := f.g.Children(cfg.Base().LocalID, types.KindDeviceSpecification)[0]
	repo := f.g.Find(types.KindRepository, "repo-a")
	require.NotNil(t, repo)
	assert.Equal(t, "git@example.com:app.git", repo.(*types.Repository).URL)
	assert.Equal(t, []string{repo.Base().LocalID}, f.g.Linked(types.LinkBuildsFrom, cfg.Base().LocalID))
	assert.Len(t, f.g.Linked(types.LinkTargets, spec.Base().LocalID), 2)

	snap := richBot()
	snap.Configuration.DeviceSpecification.DeviceIdentifiers = []string{"dev-2"}
	snap.Configuration.SourceControlBlueprint.RemoteRepositories = []snapshot.RemoteRepository{{Identifier: "repo-b"}}
	f.r.Bot(f.srv, snap)

	dev2 := f.g.Find(types.KindDevice, "dev-2")
	assert.Equal(t, []string{dev2.Base().LocalID}, f.g.Linked(types.LinkTargets, spec.Base().LocalID))
	repoB := f.g.Find(types.KindRepository, "repo-b")
	assert.Equal(t, []string{repoB.Base().LocalID}, f.g.Linked(types.LinkBuildsFrom, cfg.Base().LocalID))
	assert.NotNil(t, f.g.Find(types.KindRepository, "repo-a"), "repositories are referenced, not owned")
}
