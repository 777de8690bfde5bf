package types

import "time"

// Server is the root of the graph: one remote build server, keyed by its
// fully-qualified domain name. Servers are only ever created explicitly.
type Server struct {
	Meta

	ServerVersion      string `json:"server_version,omitempty"`
	XcodeVersion       string `json:"xcode_version,omitempty"`
	XcodeServerVersion string `json:"xcode_server_version,omitempty"`
	OSVersion          string `json:"os_version,omitempty"`

	// LastSyncedAt is local bookkeeping; no snapshot carries it.
	LastSyncedAt time.Time `json:"last_synced_at,omitempty"`
}

func (*Server) Kind() Kind { return KindServer }

// FQDN returns the server's domain name.
func (s *Server) FQDN() string { return s.Key }
