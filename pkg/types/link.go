package types

import "time"

// LinkType names a non-owning reference between two entities.
type LinkType string

// Link types. The arrow gives the direction of the stored edge.
const (
	LinkTestedOn   LinkType = "tested_on"   // integration → device
	LinkTargets    LinkType = "targets"     // device specification → device
	LinkBuildsFrom LinkType = "builds_from" // configuration → repository
	LinkRevisionOf LinkType = "revision_of" // revision blueprint → commit
)

var validLinkTypes = map[LinkType]bool{
	LinkTestedOn:   true,
	LinkTargets:    true,
	LinkBuildsFrom: true,
	LinkRevisionOf: true,
}

// dependentLinks lists link types whose source entity cannot outlive its
// target: deleting the target deletes the source.
var dependentLinks = map[LinkType]bool{
	LinkRevisionOf: true,
}

// ValidLinkType reports whether t is a known link type.
func ValidLinkType(t LinkType) bool {
	return validLinkTypes[t]
}

// Dependent reports whether the source of a link of this type is deleted
// together with the link's target.
func (t LinkType) Dependent() bool {
	return dependentLinks[t]
}

// Link represents a directed, non-owning edge in the entity graph.
// (Type, FromID, ToID) is unique.
type Link struct {
	Type      LinkType  `json:"link_type"`
	FromID    string    `json:"from_id"`
	ToID      string    `json:"to_id"`
	CreatedAt time.Time `json:"created_at"`
}
