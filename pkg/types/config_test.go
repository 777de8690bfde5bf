package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{"empty backend", Config{DataDir: "/tmp/data"}, ErrBackendEmpty},
		{"unknown backend", Config{Backend: "postgres", DataDir: "/tmp/data"}, ErrBackendUnknown},
		{"missing data dir", Config{Backend: BackendSQLite}, ErrDataDirEmpty},
		{"valid sqlite config", Config{Backend: BackendSQLite, DataDir: "/tmp/data"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
