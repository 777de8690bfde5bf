// Package graph implements the in-memory entity graph a reconciliation pass
// works against. Entities live in an arena addressed by local ID; owners,
// children and references are lookups through the graph, never pointers
// between entities.
//
// A Graph is one isolated working copy. It records what was created, deleted,
// linked and unlinked since it was loaded so a store can commit exactly
// those changes. A Graph is not safe for concurrent use.
package graph

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/botsync/pkg/types"
)

// Graph is an arena of entities with key, owner and link indexes.
type Graph struct {
	entities map[string]types.Entity
	keys     map[types.Kind]map[string]string // kind → key → local ID
	children map[string]map[string]struct{}   // owner ID → child IDs

	links map[linkKey]types.Link
	out   map[string]map[linkKey]struct{} // from ID → links
	in    map[string]map[linkKey]struct{} // to ID → links

	created      map[string]bool
	deleted      map[string]types.Entity
	addedLinks   map[linkKey]bool
	removedLinks map[linkKey]types.Link

	newID func() string
	now   func() time.Time
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDGenerator replaces the UUID v7 local ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(g *Graph) { g.newID = fn }
}

// WithClock replaces the clock used for creation timestamps.
func WithClock(fn func() time.Time) Option {
	return func(g *Graph) { g.now = fn }
}

// New returns an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		entities:     make(map[string]types.Entity),
		keys:         make(map[types.Kind]map[string]string),
		children:     make(map[string]map[string]struct{}),
		links:        make(map[linkKey]types.Link),
		out:          make(map[string]map[linkKey]struct{}),
		in:           make(map[string]map[linkKey]struct{}),
		created:      make(map[string]bool),
		deleted:      make(map[string]types.Entity),
		addedLinks:   make(map[linkKey]bool),
		removedLinks: make(map[linkKey]types.Link),
		newID:        newUUID,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// newUUID generates a UUID v7 local ID.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Load inserts an entity that already exists in the persistent store. It is
// not recorded as a change. Owners must be loaded before their children.
func (g *Graph) Load(e types.Entity) error {
	m := e.Base()
	if m.LocalID == "" {
		return fmt.Errorf("loading %s: %w", e.Kind(), types.ErrNotFound)
	}
	if e.Kind().Keyed() && m.Key != "" {
		if id, ok := g.keys[e.Kind()][m.Key]; ok && id != m.LocalID {
			return fmt.Errorf("loading %s %q: %w", e.Kind(), m.Key, types.ErrDuplicateKey)
		}
	}
	g.insert(e)
	return nil
}

// Find returns the entity of the given kind with the given key, or nil.
func (g *Graph) Find(kind types.Kind, key string) types.Entity {
	if key == "" {
		return nil
	}
	id, ok := g.keys[kind][key]
	if !ok {
		return nil
	}
	return g.entities[id]
}

// Get returns the entity with the given local ID, or nil.
func (g *Graph) Get(id string) types.Entity {
	if id == "" {
		return nil
	}
	return g.entities[id]
}

// Create allocates a new entity. Keyed kinds require a key that is not yet
// in use; owned kinds require an owner of the owning kind. Callers look up
// with Find before creating.
func (g *Graph) Create(kind types.Kind, key, ownerID string) (types.Entity, error) {
	e, err := types.New(kind)
	if err != nil {
		return nil, err
	}
	if kind.Keyed() {
		if key == "" {
			return nil, fmt.Errorf("creating %s: %w", kind, types.ErrKeyRequired)
		}
		if g.Find(kind, key) != nil {
			return nil, fmt.Errorf("creating %s %q: %w", kind, key, types.ErrDuplicateKey)
		}
	} else {
		key = ""
	}
	if err := g.checkOwner(kind, ownerID); err != nil {
		return nil, err
	}

	now := g.now().UTC()
	m := e.Base()
	m.LocalID = g.newID()
	m.Key = key
	m.OwnerID = ownerID
	m.CreatedAt = now
	m.UpdatedAt = now

	g.insert(e)
	g.created[m.LocalID] = true
	return e, nil
}

func (g *Graph) checkOwner(kind types.Kind, ownerID string) error {
	want := kind.Owner()
	if ownerID == "" {
		// Bots, commits and integrations always have an owner; the
		// remaining kinds with an owning kind are singletons or
		// collections that never exist on their own.
		if want != "" {
			return fmt.Errorf("creating %s: %w", kind, types.ErrInvalidOwner)
		}
		return nil
	}
	owner := g.Get(ownerID)
	if owner == nil || owner.Kind() != want {
		return fmt.Errorf("creating %s under %q: %w", kind, ownerID, types.ErrInvalidOwner)
	}
	return nil
}

func (g *Graph) insert(e types.Entity) {
	m := e.Base()
	g.entities[m.LocalID] = e
	if e.Kind().Keyed() && m.Key != "" {
		idx, ok := g.keys[e.Kind()]
		if !ok {
			idx = make(map[string]string)
			g.keys[e.Kind()] = idx
		}
		idx[m.Key] = m.LocalID
	}
	if m.OwnerID != "" {
		set, ok := g.children[m.OwnerID]
		if !ok {
			set = make(map[string]struct{})
			g.children[m.OwnerID] = set
		}
		set[m.LocalID] = struct{}{}
	}
}

func (g *Graph) remove(e types.Entity) {
	m := e.Base()
	delete(g.entities, m.LocalID)
	if idx, ok := g.keys[e.Kind()]; ok && idx[m.Key] == m.LocalID {
		delete(idx, m.Key)
	}
	if set, ok := g.children[m.OwnerID]; ok {
		delete(set, m.LocalID)
		if len(set) == 0 {
			delete(g.children, m.OwnerID)
		}
	}
}

// Delete removes the entity, every entity it owns (transitively) and every
// entity that depends on it through a dependent link. Non-owning links to
// and from removed entities are dropped; the entities on their other side
// remain. Deleting an entity that is not in the graph is a no-op.
func (g *Graph) Delete(e types.Entity) {
	if e == nil || g.Get(e.Base().LocalID) == nil {
		return
	}
	id := e.Base().LocalID

	for _, childID := range setKeys(g.children[id]) {
		g.Delete(g.entities[childID])
	}
	for _, k := range linkKeys(g.in[id]) {
		if k.Type.Dependent() {
			g.Delete(g.entities[k.From])
		}
	}
	for _, k := range linkKeys(g.out[id]) {
		g.unlink(k)
	}
	for _, k := range linkKeys(g.in[id]) {
		g.unlink(k)
	}

	g.remove(e)
	if g.created[id] {
		delete(g.created, id)
		return
	}
	g.deleted[id] = e
}

// Owner returns the entity that owns e, or nil for roots and free-standing
// entities.
func (g *Graph) Owner(e types.Entity) types.Entity {
	return g.Get(e.Base().OwnerID)
}

// Children returns the entities of the given kind owned by ownerID, in
// creation order.
func (g *Graph) Children(ownerID string, kind types.Kind) []types.Entity {
	var out []types.Entity
	for id := range g.children[ownerID] {
		if e := g.entities[id]; e.Kind() == kind {
			out = append(out, e)
		}
	}
	sortEntities(out)
	return out
}

// All returns every entity of the given kind, in creation order.
func (g *Graph) All(kind types.Kind) []types.Entity {
	var out []types.Entity
	for _, e := range g.entities {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	sortEntities(out)
	return out
}

// Entities returns every entity in the graph, owners before the entities
// they own.
func (g *Graph) Entities() []types.Entity {
	out := make([]types.Entity, 0, len(g.entities))
	for _, kind := range types.Kinds() {
		out = append(out, g.All(kind)...)
	}
	return out
}

// Len returns the number of entities in the graph.
func (g *Graph) Len() int {
	return len(g.entities)
}

// Created reports whether the entity was created since the graph was
// loaded or last marked clean.
func (g *Graph) Created(id string) bool {
	return g.created[id]
}

// Remap moves the entity with local ID from to local ID to, rewriting its
// children's owner IDs and every link that touches it. It is used when a
// store adopts an identity that already exists for the entity's key.
func (g *Graph) Remap(from, to string) error {
	e := g.Get(from)
	if e == nil {
		return fmt.Errorf("remapping %q: %w", from, types.ErrNotFound)
	}
	if from == to {
		return nil
	}
	if g.Get(to) != nil {
		return fmt.Errorf("remapping %q to %q: %w", from, to, types.ErrDuplicateKey)
	}

	kids := setKeys(g.children[from])
	var touching []types.Link
	for _, k := range linkKeys(g.out[from]) {
		touching = append(touching, g.links[k])
	}
	for _, k := range linkKeys(g.in[from]) {
		touching = append(touching, g.links[k])
	}
	for _, l := range touching {
		g.unlink(keyOf(l))
	}

	wasCreated := g.created[from]
	g.remove(e)
	delete(g.created, from)
	e.Base().LocalID = to
	g.insert(e)
	if wasCreated {
		g.created[to] = true
	}

	for _, childID := range kids {
		child := g.entities[childID]
		g.remove(child)
		child.Base().OwnerID = to
		g.insert(child)
	}
	for _, l := range touching {
		if l.FromID == from {
			l.FromID = to
		}
		if l.ToID == from {
			l.ToID = to
		}
		g.addLink(l)
	}
	return nil
}

func setKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sortEntities(es []types.Entity) {
	sort.Slice(es, func(i, j int) bool {
		a, b := es[i].Base(), es[j].Base()
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.LocalID < b.LocalID
	})
}
