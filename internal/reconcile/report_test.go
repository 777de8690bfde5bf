package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/botsync/pkg/snapshot"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

func TestSummarizeCountsChanges(t *testing.T) {
	f := newFixture(t)
	f.g.MarkClean()

	f.r.Integrations(f.bot, []snapshot.Integration{
		{ID: "int-1", TestedDevices: []snapshot.Device{{ID: "dev-1"}}},
		{},
	})
	rep := Summarize(f.g.Changes(), f.r.Anomalies())

	assert.Equal(t, map[types.Kind]int{types.KindIntegration: 1, types.KindDevice: 1}, rep.Created)
	assert.Empty(t, rep.Deleted)
	assert.Equal(t, 1, rep.LinksAdded)
	assert.Len(t, rep.Anomalies, 1)
	assert.False(t, rep.Empty())
	assert.Equal(t, "created device=1 integration=1; deleted none; links +1 -0; 1 skipped", rep.String())
}

func TestEmptyReport(t *testing.T) {
	f := newFixture(t)
	f.g.MarkClean()
	f.r.Bot(f.srv, &snapshot.Bot{ID: "bot-1", Name: ptr("renamed")})

	rep := Summarize(f.g.Changes(), f.r.Anomalies())
	assert.True(t, rep.Empty())
	assert.Equal(t, "created none; deleted none; links +0 -0", rep.String())
}
