package syncer

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultPollInterval is the pause between polling rounds.
const DefaultPollInterval = 5 * time.Minute

// Poller runs SyncAll for a set of servers on a fixed interval.
type Poller struct {
	orch        *Orchestrator
	servers     []string
	interval    time.Duration
	concurrency int
	logger      *slog.Logger
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the pause between rounds.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithServerConcurrency bounds how many servers are synced at once.
func WithServerConcurrency(n int) PollerOption {
	return func(p *Poller) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithPollerLogger sets the logger.
func WithPollerLogger(l *slog.Logger) PollerOption {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPoller creates a poller for servers.
func NewPoller(orch *Orchestrator, servers []string, opts ...PollerOption) *Poller {
	p := &Poller{
		orch:        orch,
		servers:     servers,
		interval:    DefaultPollInterval,
		concurrency: 2,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll runs one round and returns an outcome per server, in the order the
// servers were given. A failed server does not stop the others.
func (p *Poller) Poll(ctx context.Context) []Outcome {
	out := make([]Outcome, len(p.servers))
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, fqdn := range p.servers {
		g.Go(func() error {
			out[i] = p.orch.Run(ctx, SyncAll(fqdn))
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Run polls until ctx is canceled. The first round starts immediately.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		failed := 0
		for _, o := range p.Poll(ctx) {
			if !o.OK() {
				failed++
			}
		}
		p.logger.Info("poll round finished", "servers", len(p.servers), "failed", failed)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
