package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/botsync/internal/paths"
	"github.com/mesh-intelligence/botsync/internal/sqlite"
	"github.com/mesh-intelligence/botsync/internal/syncer"
	"github.com/mesh-intelligence/botsync/internal/xcs"
)

// openBackend attaches the store of a layout. The caller must Detach.
func openBackend(l paths.Layout, logger *slog.Logger) (*sqlite.Backend, error) {
	b := sqlite.NewBackend()
	if err := b.Attach(l.Store()); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	logger.Debug("backend attached", "data_dir", l.DataDir)
	return b, nil
}

// withBackend attaches the configured backend for the duration of fn.
func (a *app) withBackend(fn func(*sqlite.Backend) error) error {
	l, err := a.layout()
	if err != nil {
		return err
	}
	b, err := openBackend(l, a.logger)
	if err != nil {
		return err
	}
	defer b.Detach()
	return fn(b)
}

// withSession runs fn in a fresh session and saves it when fn succeeds.
func withSession(ctx context.Context, b *sqlite.Backend, fn func(*sqlite.Session) error) error {
	s, err := b.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.Discard()
	if err := fn(s); err != nil {
		return err
	}
	return s.Save(ctx)
}

// dialer builds transport clients from the configured servers.
func (a *app) dialer() syncer.Dialer {
	return func(fqdn string) (syncer.Source, error) {
		srv, ok := a.settings.server(fqdn)
		if !ok {
			return nil, fmt.Errorf("server %s is not in %s", fqdn, a.configDir)
		}
		ep, err := srv.Endpoint()
		if err != nil {
			return nil, err
		}
		return xcs.New(ep, xcs.WithLogger(a.logger))
	}
}

// orchestrator returns an orchestrator over b using the configured servers.
func (a *app) orchestrator(b *sqlite.Backend) *syncer.Orchestrator {
	return syncer.New(syncer.SQLite(b), a.dialer(),
		syncer.WithLogger(a.logger),
		syncer.WithConcurrency(a.settings.PollConcurrency))
}
