package types

import "errors"

// Sync failure taxonomy. The orchestrator reports exactly one of these per
// failed operation, wrapped around the underlying cause.
var (
	// ErrTransport is a network or HTTP failure; nothing was reconciled.
	ErrTransport = errors.New("transport failure")
	// ErrEmptyResponse means the remote call succeeded but returned no
	// usable snapshot; nothing was reconciled.
	ErrEmptyResponse = errors.New("empty response")
	// ErrMissingContext means a reconciliation routine ran without its
	// owning entity. The affected branch is skipped and logged.
	ErrMissingContext = errors.New("missing reconciliation context")
	// ErrStoreCommit means the transactional save failed; none of the
	// operation's changes became visible.
	ErrStoreCommit = errors.New("store commit failed")
	// ErrMissingRelatedEntity means an entity needed to resolve an endpoint
	// (for example integration → bot → server) is not in the store.
	ErrMissingRelatedEntity = errors.New("missing related entity")
)

// Entity store errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrDuplicateKey  = errors.New("duplicate entity key")
	ErrUnknownKind   = errors.New("unknown entity kind")
	ErrKeyRequired   = errors.New("entity key required")
	ErrInvalidOwner  = errors.New("invalid owner")
	ErrInvalidLink   = errors.New("invalid link")
	ErrSessionClosed = errors.New("session is closed")
)

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)
