// This file provides JSONL read/write helpers with atomic persistence.
package sqlite

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Export file names inside the export directory.
const (
	EntitiesFile = "entities.jsonl"
	LinksFile    = "links.jsonl"
)

// Export writes every stored entity and link to JSONL files in dir. Each
// file is replaced atomically.
func (b *Backend) Export(ctx context.Context, dir string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	db, err := b.database()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	entities, err := exportEntities(ctx, db)
	if err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(dir, EntitiesFile), entities); err != nil {
		return err
	}
	links, err := exportLinks(ctx, db)
	if err != nil {
		return err
	}
	return writeJSONL(filepath.Join(dir, LinksFile), links)
}

func exportEntities(ctx context.Context, db *sql.DB) ([]json.RawMessage, error) {
	rows, err := db.QueryContext(ctx, selectEntities+" ORDER BY created_at, local_id")
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		rec := entityRecord{
			LocalID:   r.id,
			Kind:      string(r.kind),
			Data:      json.RawMessage(r.data),
			CreatedAt: formatTime(r.createdAt),
			UpdatedAt: formatTime(r.updatedAt),
		}
		if r.key != "" {
			rec.RemoteKey = &r.key
		}
		if r.owner != "" {
			rec.OwnerID = &r.owner
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encoding entity %s: %w", r.id, err)
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func exportLinks(ctx context.Context, db *sql.DB) ([]json.RawMessage, error) {
	rows, err := db.QueryContext(ctx, selectLinks+" ORDER BY link_type, from_id, to_id")
	if err != nil {
		return nil, fmt.Errorf("querying links: %w", err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var rec linkRecord
		if err := rows.Scan(&rec.LinkType, &rec.FromID, &rec.ToID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encoding link: %w", err)
		}
		out = append(out, line)
	}
	return out, rows.Err()
}
