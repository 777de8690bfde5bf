// This file implements JSONL import.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables and column
// lists. Entities load before the links that reference them.
var jsonlTableMapping = []struct {
	file    string
	table   string
	columns []string
}{
	{EntitiesFile, "entities", []string{"local_id", "kind", "remote_key", "owner_id", "data", "created_at", "updated_at"}},
	{LinksFile, "links", []string{"link_type", "from_id", "to_id", "created_at"}},
}

// Import loads JSONL files written by Export from dir. Loading is
// transactional: either every readable record is applied or none is.
// Malformed lines, records that collide with stored rows and unknown fields
// are skipped. A missing file counts as empty.
func (b *Backend) Import(ctx context.Context, dir string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	db, err := b.database()
	if err != nil {
		return 0, err
	}

	b.commitMu.Lock()
	defer b.commitMu.Unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	total := 0
	for _, mapping := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dir, mapping.file))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		if len(records) == 0 {
			continue
		}
		n, err := insertRecords(ctx, tx, mapping.table, mapping.columns, records)
		if err != nil {
			return 0, fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import transaction: %w", err)
	}
	return total, nil
}

// insertRecords inserts parsed JSONL records into a SQLite table and returns
// how many were inserted. Only columns listed in the mapping are extracted;
// object values are re-serialized as JSON text.
func insertRecords(ctx context.Context, tx *sql.Tx, table string, columns []string, records []json.RawMessage) (int, error) {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			val, ok := obj[col]
			if !ok {
				args[i] = nil
				continue
			}
			switch v := val.(type) {
			case map[string]any, []any:
				b, err := json.Marshal(v)
				if err != nil {
					args[i] = nil
					continue
				}
				args[i] = string(b)
			default:
				args[i] = val
			}
		}

		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			// NOT NULL violations and the like skip the record.
			continue
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, nil
}
