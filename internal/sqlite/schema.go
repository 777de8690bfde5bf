// Package sqlite implements the persistent entity store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema DDL. Entities of every kind share one table; their kind-specific
// fields are a JSON document in the data column.
const (
	createEntities = `CREATE TABLE IF NOT EXISTS entities (
    local_id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    remote_key TEXT,
    owner_id TEXT,
    data TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createLinks = `CREATE TABLE IF NOT EXISTS links (
    link_type TEXT NOT NULL,
    from_id TEXT NOT NULL,
    to_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (link_type, from_id, to_id)
);`
)

// Index DDL for lookups by key, owner and link target.
const (
	idxEntitiesKindKey = `CREATE UNIQUE INDEX IF NOT EXISTS idx_entities_kind_key ON entities(kind, remote_key) WHERE remote_key IS NOT NULL;`
	idxEntitiesOwner   = `CREATE INDEX IF NOT EXISTS idx_entities_owner ON entities(owner_id);`
	idxEntitiesKind    = `CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind);`
	idxLinksTypeTo     = `CREATE INDEX IF NOT EXISTS idx_links_type_to ON links(link_type, to_id);`
	idxLinksFrom       = `CREATE INDEX IF NOT EXISTS idx_links_from ON links(from_id);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createEntities,
	createLinks,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxEntitiesKindKey,
	idxEntitiesOwner,
	idxEntitiesKind,
	idxLinksTypeTo,
	idxLinksFrom,
}

// pragmas configure the connection: WAL for readers during a commit, a busy
// timeout for lock contention.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// applySchema creates tables and indexes if they do not exist. Idempotent.
func applySchema(ctx context.Context, db *sql.DB) error {
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("executing %q: %w", p, err)
		}
	}
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}
