package syncer

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	var k keyedMutex
	var active, peak atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.lock("bot/bot-1")
			defer unlock()
			n := active.Add(1)
			if n > peak.Load() {
				peak.Store(n)
			}
			active.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
	assert.Zero(t, k.held())
}

func TestKeyedMutexDifferentKeysDoNotBlock(t *testing.T) {
	var k keyedMutex
	unlockA := k.lock("bot/a")
	unlockB := k.lock("bot/b")
	assert.Equal(t, 2, k.held())
	unlockA()
	unlockB()
	assert.Zero(t, k.held())
}

func TestRequestKeys(t *testing.T) {
	tests := []struct {
		req  Request
		key  string
		text string
	}{
		{SyncServer("ci"), "server/ci", "sync-server ci"},
		{SyncAll("ci"), "server/ci", "sync-all ci"},
		{SyncBot("ci", "b1"), "server/ci", "sync-bot ci/b1"},
		{StartIntegration("ci", "b1"), "server/ci", "start-integration ci/b1"},
		{SyncIntegration("i1"), "integration/i1", "sync-integration i1"},
		{CancelIntegration("i1"), "integration/i1", "cancel-integration i1"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.req.lockKey())
			assert.Equal(t, tt.text, tt.req.String())
			assert.NoError(t, tt.req.validate())
		})
	}
}
