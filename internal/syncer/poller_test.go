package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/botsync/pkg/types"
)

func TestPollSyncsEveryServer(t *testing.T) {
	h := newHarness(t)
	h.addServer(t, "lab.example.com")

	p := NewPoller(h.orch, []string{"ci.example.com", "lab.example.com"}, WithServerConcurrency(2))
	out := p.Poll(context.Background())

	require.Len(t, out, 2)
	assert.True(t, out[0].OK())
	assert.Equal(t, "ci.example.com", out[0].Request.Server)
	assert.False(t, out[1].OK(), "a server without an endpoint fails alone")
	assert.ErrorIs(t, out[1].Err, types.ErrMissingRelatedEntity)

	assert.NotNil(t, h.view(t).Find(types.KindIntegration, "int-1"))
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	var rounds int
	orch := New(SQLite(h.backend), func(string) (Source, error) { return h.source, nil },
		WithObserver(func(_ Request, s State) {
			if s == StateCompleted {
				rounds++
				if rounds == 2 {
					cancel()
				}
			}
		}))
	p := NewPoller(orch, []string{"ci.example.com"}, WithInterval(time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}
	assert.GreaterOrEqual(t, rounds, 2)
}
