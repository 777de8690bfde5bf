package syncer

import (
	"fmt"

	"github.com/mesh-intelligence/botsync/pkg/types"
)

// Op names a sync operation.
type Op int

// Sync operations.
const (
	OpSyncServer Op = iota + 1
	OpSyncBot
	OpSyncIntegration
	OpStartIntegration
	OpCancelIntegration
	OpSyncAll
)

var opNames = map[Op]string{
	OpSyncServer:        "sync-server",
	OpSyncBot:           "sync-bot",
	OpSyncIntegration:   "sync-integration",
	OpStartIntegration:  "start-integration",
	OpCancelIntegration: "cancel-integration",
	OpSyncAll:           "sync-all",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Request is one unit of sync work.
type Request struct {
	Op          Op
	Server      string // FQDN; empty for integration requests
	Bot         string // remote bot identifier
	Integration string // remote integration identifier
}

// SyncServer refreshes a server's versions, bot listing and devices.
func SyncServer(fqdn string) Request {
	return Request{Op: OpSyncServer, Server: fqdn}
}

// SyncBot refreshes one bot with its statistics and integrations.
func SyncBot(fqdn, botID string) Request {
	return Request{Op: OpSyncBot, Server: fqdn, Bot: botID}
}

// SyncIntegration refreshes one integration already in the store.
func SyncIntegration(integrationID string) Request {
	return Request{Op: OpSyncIntegration, Integration: integrationID}
}

// StartIntegration queues an integration of a bot and records it.
func StartIntegration(fqdn, botID string) Request {
	return Request{Op: OpStartIntegration, Server: fqdn, Bot: botID}
}

// CancelIntegration cancels an integration and records its new state.
func CancelIntegration(integrationID string) Request {
	return Request{Op: OpCancelIntegration, Integration: integrationID}
}

// SyncAll refreshes a server and every one of its bots in one pass.
func SyncAll(fqdn string) Request {
	return Request{Op: OpSyncAll, Server: fqdn}
}

func (r Request) String() string {
	switch r.Op {
	case OpSyncServer, OpSyncAll:
		return fmt.Sprintf("%s %s", r.Op, r.Server)
	case OpSyncBot, OpStartIntegration:
		return fmt.Sprintf("%s %s/%s", r.Op, r.Server, r.Bot)
	default:
		return fmt.Sprintf("%s %s", r.Op, r.Integration)
	}
}

// validate checks that the request names what its operation needs.
func (r Request) validate() error {
	var missing string
	switch r.Op {
	case OpSyncServer, OpSyncAll:
		if r.Server == "" {
			missing = "server"
		}
	case OpSyncBot, OpStartIntegration:
		if r.Server == "" {
			missing = "server"
		} else if r.Bot == "" {
			missing = "bot"
		}
	case OpSyncIntegration, OpCancelIntegration:
		if r.Integration == "" {
			missing = "integration"
		}
	default:
		return fmt.Errorf("%w: unknown operation %s", types.ErrMissingRelatedEntity, r.Op)
	}
	if missing != "" {
		return fmt.Errorf("%w: %s request names no %s", types.ErrMissingRelatedEntity, r.Op, missing)
	}
	return nil
}

// lockKey is the server the request serializes on. Integration requests
// do not name their server; they fall back to the integration until the
// orchestrator resolves it.
func (r Request) lockKey() string {
	if r.Server != "" {
		return "server/" + r.Server
	}
	return "integration/" + r.Integration
}
