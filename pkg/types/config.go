package types

import "errors"

// Config selects and parameterizes the store backend for Backend.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDataDirEmpty   = errors.New("data directory must not be empty")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config names a known backend and a data
// directory. It returns a sentinel error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	return nil
}
