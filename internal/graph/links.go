package graph

import (
	"fmt"
	"sort"

	"github.com/mesh-intelligence/botsync/pkg/types"
)

type linkKey struct {
	Type types.LinkType
	From string
	To   string
}

func keyOf(l types.Link) linkKey {
	return linkKey{Type: l.Type, From: l.FromID, To: l.ToID}
}

func linkKeys(set map[linkKey]struct{}) []linkKey {
	out := make([]linkKey, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// LoadLink inserts a link that already exists in the persistent store. It
// is not recorded as a change.
func (g *Graph) LoadLink(l types.Link) error {
	if !types.ValidLinkType(l.Type) {
		return fmt.Errorf("loading link %q: %w", l.Type, types.ErrInvalidLink)
	}
	g.addLink(l)
	return nil
}

// Link adds a non-owning reference from one entity to another. Linking an
// existing pair again is a no-op.
func (g *Graph) Link(t types.LinkType, fromID, toID string) error {
	if !types.ValidLinkType(t) {
		return fmt.Errorf("linking %q: %w", t, types.ErrInvalidLink)
	}
	if g.Get(fromID) == nil || g.Get(toID) == nil {
		return fmt.Errorf("linking %s %q → %q: %w", t, fromID, toID, types.ErrNotFound)
	}
	k := linkKey{Type: t, From: fromID, To: toID}
	if _, ok := g.links[k]; ok {
		return nil
	}
	if old, ok := g.removedLinks[k]; ok {
		delete(g.removedLinks, k)
		g.addLink(old)
		return nil
	}
	g.addLink(types.Link{Type: t, FromID: fromID, ToID: toID, CreatedAt: g.now().UTC()})
	g.addedLinks[k] = true
	return nil
}

// Unlink removes a non-owning reference. Neither entity is deleted.
// Unlinking a pair that is not linked is a no-op.
func (g *Graph) Unlink(t types.LinkType, fromID, toID string) {
	g.unlink(linkKey{Type: t, From: fromID, To: toID})
}

// Linked returns the local IDs that fromID references through links of the
// given type, sorted.
func (g *Graph) Linked(t types.LinkType, fromID string) []string {
	var out []string
	for k := range g.out[fromID] {
		if k.Type == t {
			out = append(out, k.To)
		}
	}
	sort.Strings(out)
	return out
}

// LinkedFrom returns the local IDs that reference toID through links of the
// given type, sorted.
func (g *Graph) LinkedFrom(t types.LinkType, toID string) []string {
	var out []string
	for k := range g.in[toID] {
		if k.Type == t {
			out = append(out, k.From)
		}
	}
	sort.Strings(out)
	return out
}

// Links returns every link in the graph in a stable order.
func (g *Graph) Links() []types.Link {
	keys := make(map[linkKey]struct{}, len(g.links))
	for k := range g.links {
		keys[k] = struct{}{}
	}
	out := make([]types.Link, 0, len(keys))
	for _, k := range linkKeys(keys) {
		out = append(out, g.links[k])
	}
	return out
}

func (g *Graph) addLink(l types.Link) {
	k := keyOf(l)
	g.links[k] = l
	if g.out[l.FromID] == nil {
		g.out[l.FromID] = make(map[linkKey]struct{})
	}
	g.out[l.FromID][k] = struct{}{}
	if g.in[l.ToID] == nil {
		g.in[l.ToID] = make(map[linkKey]struct{})
	}
	g.in[l.ToID][k] = struct{}{}
}

func (g *Graph) unlink(k linkKey) {
	l, ok := g.links[k]
	if !ok {
		return
	}
	delete(g.links, k)
	delete(g.out[k.From], k)
	if len(g.out[k.From]) == 0 {
		delete(g.out, k.From)
	}
	delete(g.in[k.To], k)
	if len(g.in[k.To]) == 0 {
		delete(g.in, k.To)
	}
	if g.addedLinks[k] {
		delete(g.addedLinks, k)
		return
	}
	g.removedLinks[k] = l
}
