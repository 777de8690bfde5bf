package graph

import "github.com/mesh-intelligence/botsync/pkg/types"

// Changes is the structural change set of a graph since it was loaded or
// last marked clean. Scalar field updates are not tracked here; stores
// detect them by comparing serialized entities.
type Changes struct {
	Created      []types.Entity
	Deleted      []types.Entity
	AddedLinks   []types.Link
	RemovedLinks []types.Link
}

// Empty reports whether the change set has no structural changes.
func (c Changes) Empty() bool {
	return len(c.Created) == 0 && len(c.Deleted) == 0 &&
		len(c.AddedLinks) == 0 && len(c.RemovedLinks) == 0
}

// Changes returns the structural changes recorded so far. Created entities
// are listed owners first.
func (g *Graph) Changes() Changes {
	var c Changes
	for _, e := range g.Entities() {
		if g.created[e.Base().LocalID] {
			c.Created = append(c.Created, e)
		}
	}
	for _, e := range g.deleted {
		c.Deleted = append(c.Deleted, e)
	}
	sortEntities(c.Deleted)

	added := make(map[linkKey]struct{}, len(g.addedLinks))
	for k := range g.addedLinks {
		added[k] = struct{}{}
	}
	for _, k := range linkKeys(added) {
		c.AddedLinks = append(c.AddedLinks, g.links[k])
	}
	removed := make(map[linkKey]struct{}, len(g.removedLinks))
	for k := range g.removedLinks {
		removed[k] = struct{}{}
	}
	for _, k := range linkKeys(removed) {
		c.RemovedLinks = append(c.RemovedLinks, g.removedLinks[k])
	}
	return c
}

// MarkClean forgets all recorded changes. Stores call it after the changes
// have been committed.
func (g *Graph) MarkClean() {
	g.created = make(map[string]bool)
	g.deleted = make(map[string]types.Entity)
	g.addedLinks = make(map[linkKey]bool)
	g.removedLinks = make(map[linkKey]types.Link)
}
