package syncer

import (
	"time"

	"github.com/mesh-intelligence/botsync/internal/reconcile"
)

// State is the stage a sync operation is in.
type State int

// Operation states, in order. Completed and Failed are terminal.
const (
	StateIdle State = iota
	StateFetching
	StateReconciling
	StateSaving
	StateCompleted
	StateFailed
)

var stateNames = [...]string{"idle", "fetching", "reconciling", "saving", "completed", "failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether s ends an operation.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Outcome is the single completion signal of an operation. Err is nil
// exactly when State is StateCompleted; otherwise it wraps one of the sync
// failure sentinels in pkg/types.
type Outcome struct {
	Request  Request
	State    State
	Err      error
	Report   reconcile.Report
	Started  time.Time
	Finished time.Time
}

// OK reports whether the operation completed.
func (o Outcome) OK() bool {
	return o.State == StateCompleted
}

// Observer is told about every state an operation enters.
type Observer func(req Request, s State)
