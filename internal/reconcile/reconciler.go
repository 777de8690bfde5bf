// Package reconcile merges build server snapshots into the local entity
// graph. There is one routine per entity kind. Each routine upserts by
// remote identifier, copies the scalar fields the snapshot carries, wires
// owned children and references, and prunes what the snapshot no longer
// reports. Fields a snapshot leaves absent are never touched.
//
// Routines do not return errors. A branch that cannot be reconciled (no
// owning entity, no identifier, a store refusal) is skipped, logged and
// recorded as an Anomaly; its siblings are still reconciled.
package reconcile

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mesh-intelligence/botsync/pkg/types"
)

// Store is the entity store a reconciliation pass mutates. Lookups return
// nil on a miss.
type Store interface {
	Find(kind types.Kind, key string) types.Entity
	Get(id string) types.Entity
	Create(kind types.Kind, key, ownerID string) (types.Entity, error)
	Delete(e types.Entity)
	Children(ownerID string, kind types.Kind) []types.Entity
	All(kind types.Kind) []types.Entity
	Link(t types.LinkType, fromID, toID string) error
	Unlink(t types.LinkType, fromID, toID string)
	Linked(t types.LinkType, fromID string) []string
	LinkedFrom(t types.LinkType, toID string) []string
}

// Anomaly is a snapshot branch that was skipped.
type Anomaly struct {
	Kind types.Kind
	Key  string
	Err  error
}

func (a Anomaly) String() string {
	if a.Key == "" {
		return fmt.Sprintf("%s: %v", a.Kind, a.Err)
	}
	return fmt.Sprintf("%s %q: %v", a.Kind, a.Key, a.Err)
}

// Reconciler applies snapshots to one Store. It is used for a single pass
// and is not safe for concurrent use.
type Reconciler struct {
	store     Store
	logger    *slog.Logger
	anomalies []Anomaly
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger anomalies are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Reconciler working against store.
func New(store Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Anomalies returns the branches skipped so far, in the order they were
// encountered.
func (r *Reconciler) Anomalies() []Anomaly {
	return append([]Anomaly(nil), r.anomalies...)
}

// skip records a contained anomaly.
func (r *Reconciler) skip(kind types.Kind, key string, err error) {
	r.anomalies = append(r.anomalies, Anomaly{Kind: kind, Key: key, Err: err})
	r.logger.Warn("skipping snapshot branch", "kind", kind, "key", key, "error", err)
}

// missingContext records a routine that ran without its owning entity.
func (r *Reconciler) missingContext(kind types.Kind, key, what string) {
	r.skip(kind, key, fmt.Errorf("%w: %s", types.ErrMissingContext, what))
}

// live reports whether e is the entity the store holds under its local ID.
func (r *Reconciler) live(e types.Entity) bool {
	return r.store.Get(e.Base().LocalID) == e
}

// upsert finds the entity of kind with key or creates it under owner. A
// found entity that belongs to a different owner is refused.
func (r *Reconciler) upsert(kind types.Kind, key string, owner types.Entity) (types.Entity, error) {
	ownerID := ""
	if owner != nil {
		ownerID = owner.Base().LocalID
	}
	if e := r.store.Find(kind, key); e != nil {
		if kind.Owner() != "" && e.Base().OwnerID != ownerID {
			return nil, fmt.Errorf("owned by %q: %w", e.Base().OwnerID, types.ErrInvalidOwner)
		}
		return e, nil
	}
	return r.store.Create(kind, key, ownerID)
}

// singleton returns the one child of kind under owner, creating it if
// absent. Surplus children are deleted.
func (r *Reconciler) singleton(owner types.Entity, kind types.Kind) (types.Entity, error) {
	ownerID := owner.Base().LocalID
	kids := r.store.Children(ownerID, kind)
	if len(kids) == 0 {
		return r.store.Create(kind, "", ownerID)
	}
	for _, extra := range kids[1:] {
		r.store.Delete(extra)
	}
	return kids[0], nil
}

// clear deletes every child of kind under owner.
func (r *Reconciler) clear(owner types.Entity, kind types.Kind) {
	for _, c := range r.store.Children(owner.Base().LocalID, kind) {
		r.store.Delete(c)
	}
}

// syncLinks makes the links of type t from fromID point at exactly toIDs.
// Targets that drop out are unlinked, not deleted.
func (r *Reconciler) syncLinks(t types.LinkType, from types.Entity, toIDs []string) {
	fromID := from.Base().LocalID
	want := make(map[string]bool, len(toIDs))
	for _, id := range toIDs {
		want[id] = true
		if err := r.store.Link(t, fromID, id); err != nil {
			r.skip(from.Kind(), from.Base().Key, fmt.Errorf("linking %s: %w", t, err))
		}
	}
	for _, id := range r.store.Linked(t, fromID) {
		if !want[id] {
			r.store.Unlink(t, fromID, id)
		}
	}
}

// errMissingKey is recorded for keyed snapshot records without an
// identifier.
var errMissingKey = errors.New("snapshot record has no identifier")

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setTime(dst *time.Time, src *time.Time) {
	if src != nil {
		*dst = src.UTC()
	}
}

func setSlice[T any](dst *[]T, src []T) {
	if src != nil {
		*dst = append([]T{}, src...)
	}
}
