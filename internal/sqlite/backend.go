package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/botsync/internal/graph"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// DatabaseFile is the name of the SQLite database inside DataDir.
const DatabaseFile = "botsync.db"

// Backend is the persistent entity store. Each unit of work runs in its own
// Session; sessions commit atomically and never see each other's pending
// changes.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	// commitMu serializes Session.Save so key adoption and the write that
	// follows it see the same database state.
	commitMu sync.Mutex

	graphOpts []graph.Option

	// beforeCommit, when set, runs inside the save transaction just before
	// it commits. Tests use it to inject commit failures.
	beforeCommit func() error
}

// NewBackend creates a new SQLite backend instance. The options configure
// the graph of every session the backend opens.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...graph.Option) *Backend {
	return &Backend{graphOpts: opts}
}

// Attach opens (or creates) the database in config.DataDir and applies the
// schema. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DatabaseFile))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := applySchema(context.Background(), db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrBackendDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		return err
	}
	return nil
}

// DataDir returns the directory the backend is attached to.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.DataDir
}

// database returns the open handle. The caller must hold b.mu.
func (b *Backend) database() (*sql.DB, error) {
	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	return b.db, nil
}

// Begin opens a session holding a private copy of the stored graph.
func (b *Backend) Begin(ctx context.Context) (*Session, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.database()
	if err != nil {
		return nil, err
	}
	g := graph.New(b.graphOpts...)
	baseline, err := loadGraph(ctx, db, g)
	if err != nil {
		return nil, fmt.Errorf("loading graph: %w", err)
	}
	return &Session{Graph: g, backend: b, baseline: baseline}, nil
}
