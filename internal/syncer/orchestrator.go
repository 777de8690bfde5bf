// Package syncer drives sync operations: it fetches snapshots from a
// build server, reconciles them into an isolated session and saves the
// session in one transaction. Every operation ends in exactly one Outcome.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mesh-intelligence/botsync/internal/graph"
	"github.com/mesh-intelligence/botsync/internal/reconcile"
	"github.com/mesh-intelligence/botsync/internal/sqlite"
	"github.com/mesh-intelligence/botsync/pkg/snapshot"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// Source fetches snapshots from one build server. *xcs.Client implements it.
type Source interface {
	Versions(ctx context.Context) (*snapshot.Versions, error)
	Bots(ctx context.Context) ([]snapshot.Bot, error)
	Bot(ctx context.Context, id string) (*snapshot.Bot, error)
	Stats(ctx context.Context, botID string) (*snapshot.Stats, error)
	Integrations(ctx context.Context, botID string, last int) ([]snapshot.Integration, error)
	Integration(ctx context.Context, id string) (*snapshot.Integration, error)
	Commits(ctx context.Context, integrationID string) ([]snapshot.IntegrationCommits, error)
	Issues(ctx context.Context, integrationID string) (*snapshot.IssueSet, error)
	Devices(ctx context.Context) ([]snapshot.Device, error)
	StartIntegration(ctx context.Context, botID string) (*snapshot.Integration, error)
	CancelIntegration(ctx context.Context, id string) error
}

// Dialer returns the Source for a server FQDN.
type Dialer func(fqdn string) (Source, error)

// Session is an isolated working copy of the store.
type Session interface {
	reconcile.Store
	Changes() graph.Changes
	Save(ctx context.Context) error
	Discard()
}

// Store opens sessions.
type Store interface {
	Begin(ctx context.Context) (Session, error)
}

type sqliteStore struct {
	backend *sqlite.Backend
}

// SQLite adapts an attached SQLite backend to Store.
func SQLite(b *sqlite.Backend) Store {
	return sqliteStore{backend: b}
}

func (s sqliteStore) Begin(ctx context.Context) (Session, error) {
	sess, err := s.backend.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Orchestrator runs sync operations against a store.
type Orchestrator struct {
	store       Store
	dial        Dialer
	logger      *slog.Logger
	observer    Observer
	now         func() time.Time
	concurrency int
	locks       keyedMutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers a function called on every state transition.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) {
		o.observer = fn
	}
}

// WithClock sets the clock used for sync timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithConcurrency bounds the number of bots fetched in parallel by a
// SyncAll operation.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// New creates an Orchestrator.
func New(store Store, dial Dialer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		dial:        dial,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start runs req in the background. The returned channel yields exactly one
// Outcome and is then closed.
func (o *Orchestrator) Start(ctx context.Context, req Request) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		ch <- o.Run(ctx, req)
	}()
	return ch
}

// Run executes req and returns its outcome. Nothing is written to the store
// unless the operation completes.
func (o *Orchestrator) Run(ctx context.Context, req Request) Outcome {
	out := Outcome{Request: req, Started: o.now()}
	o.transition(req, StateIdle)
	if err := req.validate(); err != nil {
		return o.fail(out, err)
	}

	unlock := o.locks.lock(o.lockKey(ctx, req))
	defer unlock()

	o.transition(req, StateFetching)
	sess, err := o.store.Begin(ctx)
	if err != nil {
		return o.fail(out, classify(err, types.ErrStoreCommit))
	}
	defer sess.Discard()

	p, err := o.fetch(ctx, sess, req)
	if err != nil {
		return o.fail(out, classify(err, types.ErrTransport))
	}

	o.transition(req, StateReconciling)
	r := reconcile.New(sess, reconcile.WithLogger(o.logger))
	o.apply(r, sess, p)
	out.Report = reconcile.Summarize(sess.Changes(), r.Anomalies())

	o.transition(req, StateSaving)
	if err := sess.Save(ctx); err != nil {
		return o.fail(out, classify(err, types.ErrStoreCommit))
	}

	out.State = StateCompleted
	out.Finished = o.now()
	o.transition(req, StateCompleted)
	o.logger.Info("sync completed",
		"request", req.String(),
		"report", out.Report.String(),
		"duration", out.Finished.Sub(out.Started))
	return out
}

// lockKey returns the key req serializes on. Every operation on a server,
// its bots and their integrations shares the server's key, so no two
// sessions rebuild the same collections at once.
func (o *Orchestrator) lockKey(ctx context.Context, req Request) string {
	if req.Server != "" {
		return req.lockKey()
	}
	sess, err := o.store.Begin(ctx)
	if err != nil {
		return req.lockKey()
	}
	defer sess.Discard()
	if srv := serverOfIntegration(sess, req.Integration); srv != nil {
		return "server/" + srv.FQDN()
	}
	return req.lockKey()
}

func (o *Orchestrator) fail(out Outcome, err error) Outcome {
	out.State = StateFailed
	out.Err = err
	out.Finished = o.now()
	o.transition(out.Request, StateFailed)
	o.logger.Warn("sync failed", "request", out.Request.String(), "error", err)
	return out
}

func (o *Orchestrator) transition(req Request, s State) {
	o.logger.Debug("sync state", "request", req.String(), "state", s.String())
	if o.observer != nil {
		o.observer(req, s)
	}
}

var failures = []error{
	types.ErrTransport,
	types.ErrEmptyResponse,
	types.ErrMissingRelatedEntity,
	types.ErrStoreCommit,
}

// classify makes sure err carries one of the failure sentinels, wrapping it
// in fallback when it carries none.
func classify(err error, fallback error) error {
	for _, known := range failures {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", fallback, err)
}
