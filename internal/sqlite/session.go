package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/botsync/internal/graph"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// Session is an isolated working copy of the stored graph. Changes made
// through it stay private until Save commits them in one transaction.
// A Session is not safe for concurrent use.
type Session struct {
	*graph.Graph

	backend  *Backend
	baseline map[string]string // local ID → fingerprint at load or last save
	closed   bool
}

const (
	upsertEntity = `INSERT INTO entities (local_id, kind, remote_key, owner_id, data, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(local_id) DO UPDATE SET
    kind = excluded.kind,
    remote_key = excluded.remote_key,
    owner_id = excluded.owner_id,
    data = excluded.data,
    updated_at = excluded.updated_at`
	insertLink = `INSERT INTO links (link_type, from_id, to_id, created_at) VALUES (?, ?, ?, ?)
ON CONFLICT(link_type, from_id, to_id) DO NOTHING`
	deleteEntity     = `DELETE FROM entities WHERE local_id = ?`
	deleteEntityLink = `DELETE FROM links WHERE from_id = ? OR to_id = ?`
	deleteLink       = `DELETE FROM links WHERE link_type = ? AND from_id = ? AND to_id = ?`
	selectKeyOwner   = `SELECT local_id FROM entities WHERE kind = ? AND remote_key = ?`
	selectChildren   = `SELECT local_id FROM entities WHERE owner_id = ? AND kind = ?`
	selectLocalIDs   = `SELECT local_id FROM entities`

	// selectSubtree lists a stored entity together with everything it owns.
	selectSubtree = `WITH RECURSIVE doomed(id) AS (
    SELECT ?
    UNION
    SELECT e.local_id FROM entities e JOIN doomed d ON e.owner_id = d.id
)
SELECT id FROM doomed`
)

// Save commits every pending change as one atomic unit: created, updated
// and deleted entities, and added and removed links. On failure nothing is
// written, the error wraps ErrStoreCommit and the session is closed.
func (s *Session) Save(ctx context.Context) error {
	if s.closed {
		return types.ErrSessionClosed
	}

	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	db, err := s.backend.database()
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrStoreCommit, err)
	}

	s.backend.commitMu.Lock()
	defer s.backend.commitMu.Unlock()

	written, err := s.commit(ctx, db)
	if err != nil {
		s.closed = true
		return fmt.Errorf("%w: %w", types.ErrStoreCommit, err)
	}

	for _, e := range s.Changes().Deleted {
		delete(s.baseline, e.Base().LocalID)
	}
	for id, fp := range written {
		s.baseline[id] = fp
	}
	s.MarkClean()
	return nil
}

// Discard abandons the session's pending changes.
func (s *Session) Discard() {
	s.closed = true
}

func (s *Session) commit(ctx context.Context, db *sql.DB) (map[string]string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.adoptStoredKeys(ctx, tx); err != nil {
		return nil, err
	}
	changes := s.Changes()
	if err := s.purgeForeignChildren(ctx, tx, changes); err != nil {
		return nil, err
	}

	for _, e := range changes.Deleted {
		id := e.Base().LocalID
		if _, err := tx.ExecContext(ctx, deleteEntity, id); err != nil {
			return nil, fmt.Errorf("deleting %s %s: %w", e.Kind(), id, err)
		}
		if _, err := tx.ExecContext(ctx, deleteEntityLink, id, id); err != nil {
			return nil, fmt.Errorf("deleting links of %s: %w", id, err)
		}
	}
	for _, l := range changes.RemovedLinks {
		if _, err := tx.ExecContext(ctx, deleteLink, string(l.Type), l.FromID, l.ToID); err != nil {
			return nil, fmt.Errorf("deleting %s link: %w", l.Type, err)
		}
	}

	gone, err := s.goneEntities(ctx, tx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	written := make(map[string]string)
	for _, e := range s.Entities() {
		if gone[e.Base().LocalID] {
			continue
		}
		r, err := encodeEntity(e)
		if err != nil {
			return nil, err
		}
		fp := r.fingerprint()
		if old, ok := s.baseline[r.id]; ok && old == fp {
			continue
		}
		if !s.Created(r.id) {
			r.updatedAt = now
		}
		if _, err := tx.ExecContext(ctx, upsertEntity,
			r.id, string(r.kind), nullable(r.key), nullable(r.owner), r.data,
			formatTime(r.createdAt), formatTime(r.updatedAt),
		); err != nil {
			return nil, fmt.Errorf("writing %s %s: %w", r.kind, r.id, err)
		}
		e.Base().UpdatedAt = r.updatedAt
		written[r.id] = fp
	}

	for _, l := range changes.AddedLinks {
		if gone[l.FromID] || gone[l.ToID] {
			continue
		}
		if _, err := tx.ExecContext(ctx, insertLink,
			string(l.Type), l.FromID, l.ToID, formatTime(l.CreatedAt),
		); err != nil {
			return nil, fmt.Errorf("writing %s link: %w", l.Type, err)
		}
	}

	if hook := s.backend.beforeCommit; hook != nil {
		if err := hook(); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing: %w", err)
	}
	return written, nil
}

// adoptStoredKeys resolves keyed entities this session created that another
// session has since committed under the same key. The session's entity takes
// over the stored local ID.
func (s *Session) adoptStoredKeys(ctx context.Context, tx *sql.Tx) error {
	for _, e := range s.Changes().Created {
		if !e.Kind().Keyed() {
			continue
		}
		m := e.Base()
		var storedID string
		err := tx.QueryRowContext(ctx, selectKeyOwner, string(e.Kind()), m.Key).Scan(&storedID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("looking up %s %q: %w", e.Kind(), m.Key, err)
		}
		if storedID == m.LocalID {
			continue
		}
		if err := s.Remap(m.LocalID, storedID); err != nil {
			return err
		}
	}
	return nil
}

type collection struct {
	owner string
	kind  types.Kind
}

// purgeForeignChildren makes every unkeyed collection this session created
// or deleted members of match the session's view. Stored members the
// session never loaded were committed by another session since Begin and
// are deleted with everything they own.
func (s *Session) purgeForeignChildren(ctx context.Context, tx *sql.Tx, changes graph.Changes) error {
	seen := make(map[collection]bool)
	var touched []collection
	for _, list := range [][]types.Entity{changes.Created, changes.Deleted} {
		for _, e := range list {
			m := e.Base()
			if e.Kind().Keyed() || m.OwnerID == "" {
				continue
			}
			c := collection{owner: m.OwnerID, kind: e.Kind()}
			if !seen[c] {
				seen[c] = true
				touched = append(touched, c)
			}
		}
	}

	for _, c := range touched {
		ids, err := queryIDs(ctx, tx, selectChildren, c.owner, string(c.kind))
		if err != nil {
			return fmt.Errorf("listing stored %s under %s: %w", c.kind, c.owner, err)
		}
		for _, id := range ids {
			if s.Get(id) != nil || s.baseline[id] != "" {
				continue
			}
			subtree, err := queryIDs(ctx, tx, selectSubtree, id)
			if err != nil {
				return fmt.Errorf("listing descendants of %s: %w", id, err)
			}
			for _, doomed := range subtree {
				if _, err := tx.ExecContext(ctx, deleteEntity, doomed); err != nil {
					return fmt.Errorf("deleting stored %s: %w", doomed, err)
				}
				if _, err := tx.ExecContext(ctx, deleteEntityLink, doomed, doomed); err != nil {
					return fmt.Errorf("deleting links of %s: %w", doomed, err)
				}
			}
		}
	}
	return nil
}

// goneEntities returns the loaded entities another session deleted since
// Begin, together with everything under them. Writing them would bring
// them back.
func (s *Session) goneEntities(ctx context.Context, tx *sql.Tx) (map[string]bool, error) {
	ids, err := queryIDs(ctx, tx, selectLocalIDs)
	if err != nil {
		return nil, fmt.Errorf("listing stored entities: %w", err)
	}
	live := make(map[string]bool, len(ids))
	for _, id := range ids {
		live[id] = true
	}
	gone := make(map[string]bool)
	for _, e := range s.Entities() {
		m := e.Base()
		if (!s.Created(m.LocalID) && !live[m.LocalID]) || gone[m.OwnerID] {
			gone[m.LocalID] = true
		}
	}
	return gone, nil
}

func queryIDs(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
