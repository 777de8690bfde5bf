package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/botsync/internal/graph"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// row is one entities table row.
type row struct {
	id        string
	kind      types.Kind
	key       string
	owner     string
	data      string
	createdAt time.Time
	updatedAt time.Time
}

// fingerprint identifies the stored content of a row; a row whose
// fingerprint is unchanged since load is not rewritten.
func (r row) fingerprint() string {
	return r.key + "\x00" + r.owner + "\x00" + r.data
}

func encodeEntity(e types.Entity) (row, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return row{}, fmt.Errorf("encoding %s: %w", e.Kind(), err)
	}
	m := e.Base()
	return row{
		id:        m.LocalID,
		kind:      e.Kind(),
		key:       m.Key,
		owner:     m.OwnerID,
		data:      string(data),
		createdAt: m.CreatedAt,
		updatedAt: m.UpdatedAt,
	}, nil
}

func decodeEntity(r row) (types.Entity, error) {
	e, err := types.New(r.kind)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", r.kind, err)
	}
	if err := json.Unmarshal([]byte(r.data), e); err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", r.kind, r.id, err)
	}
	m := e.Base()
	m.LocalID = r.id
	m.Key = r.key
	m.OwnerID = r.owner
	m.CreatedAt = r.createdAt
	m.UpdatedAt = r.updatedAt
	return e, nil
}

// entityRecord is the JSONL form of an entities row.
type entityRecord struct {
	LocalID   string          `json:"local_id"`
	Kind      string          `json:"kind"`
	RemoteKey *string         `json:"remote_key"`
	OwnerID   *string         `json:"owner_id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// linkRecord is the JSONL form of a links row.
type linkRecord struct {
	LinkType  string `json:"link_type"`
	FromID    string `json:"from_id"`
	ToID      string `json:"to_id"`
	CreatedAt string `json:"created_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

const (
	selectEntities = `SELECT local_id, kind, remote_key, owner_id, data, created_at, updated_at FROM entities`
	selectLinks    = `SELECT link_type, from_id, to_id, created_at FROM links`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (row, error) {
	var (
		r                    row
		kind                 string
		key, owner           sql.NullString
		createdAt, updatedAt string
	)
	if err := s.Scan(&r.id, &kind, &key, &owner, &r.data, &createdAt, &updatedAt); err != nil {
		return row{}, err
	}
	r.kind = types.Kind(kind)
	r.key = key.String
	r.owner = owner.String
	r.createdAt = parseTime(createdAt)
	r.updatedAt = parseTime(updatedAt)
	return r, nil
}

// loadGraph reads every entity and link into g and returns the fingerprint
// of each loaded row. Rows of kinds this build does not know are skipped.
func loadGraph(ctx context.Context, db *sql.DB, g *graph.Graph) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, selectEntities)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	baseline := make(map[string]string)
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		e, err := decodeEntity(r)
		if errors.Is(err, types.ErrUnknownKind) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := g.Load(e); err != nil {
			return nil, err
		}
		baseline[r.id] = r.fingerprint()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}

	lrows, err := db.QueryContext(ctx, selectLinks)
	if err != nil {
		return nil, fmt.Errorf("querying links: %w", err)
	}
	defer lrows.Close()
	for lrows.Next() {
		var lt, from, to, createdAt string
		if err := lrows.Scan(&lt, &from, &to, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		if g.Get(from) == nil || g.Get(to) == nil {
			continue
		}
		l := types.Link{Type: types.LinkType(lt), FromID: from, ToID: to, CreatedAt: parseTime(createdAt)}
		if err := g.LoadLink(l); err != nil {
			continue
		}
	}
	if err := lrows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", err)
	}
	return baseline, nil
}
