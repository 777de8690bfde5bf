// Package types defines the persistent entities of the local build graph,
// their kinds and relationship types, and the sentinel errors shared by the
// store, the reconciler and the sync orchestrator.
//
// Entities are addressed by a store-assigned local ID. Owned children carry
// their owner's local ID; non-owning references are typed links. Neither
// side holds a pointer to the other, so the graph has no reference cycles.
package types
