package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/botsync/pkg/types"
)

// fakeHost replaces the process environment for one test.
func fakeHost(t *testing.T, env map[string]string, cwd, userConfig string) {
	t.Helper()
	saved := host
	t.Cleanup(func() { host = saved })
	host.getenv = func(k string) string { return env[k] }
	host.getwd = func() (string, error) { return cwd, nil }
	host.userConfigDir = func() (string, error) {
		if userConfig == "" {
			return "", errors.New("no home")
		}
		return userConfig, nil
	}
}

func TestConfigDir(t *testing.T) {
	tests := []struct {
		name       string
		flag       string
		env        string
		userConfig string
		want       string
		wantErr    bool
	}{
		{"flag wins", "/flag/cfg", "/env/cfg", "/home/u/.config", "/flag/cfg", false},
		{"env when no flag", "", "/env/cfg", "/home/u/.config", "/env/cfg", false},
		{"per-user default", "", "", "/home/u/.config", "/home/u/.config/botsync", false},
		{"no user directory", "", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeHost(t, map[string]string{EnvConfigDir: tt.env}, "/work", tt.userConfig)
			got, err := ConfigDir(tt.flag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDataDir(t *testing.T) {
	tests := []struct {
		name       string
		flag       string
		configured string
		env        string
		want       string
	}{
		{"flag wins", "/flag/data", "/cfg/data", "/env/data", "/flag/data"},
		{"config.yaml over env", "", "/cfg/data", "/env/data", "/cfg/data"},
		{"env when unconfigured", "", "", "/env/data", "/env/data"},
		{"working directory default", "", "", "", "/work/.botsync-db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeHost(t, map[string]string{EnvDataDir: tt.env}, "/work", "/home/u/.config")
			got, err := DataDir(tt.flag, tt.configured)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelativeOverridesBecomeAbsolute(t *testing.T) {
	fakeHost(t, map[string]string{EnvConfigDir: "rel/cfg"}, "/work", "/home/u/.config")
	cwd, err := os.Getwd()
	require.NoError(t, err)

	cfg, err := ConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "rel", "cfg"), cfg)

	data, err := DataDir("", "rel/data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "rel", "data"), data)
}

func TestLayout(t *testing.T) {
	l := Layout{ConfigDir: "/cfg", DataDir: "/data"}

	assert.Equal(t, "/cfg/config.yaml", l.ConfigFile())
	assert.Equal(t, types.Config{Backend: types.BackendSQLite, DataDir: "/data"}, l.Store())
	require.NoError(t, l.Store().Validate())

	dir, err := l.ExportDir("")
	require.NoError(t, err)
	assert.Equal(t, "/data/exports", dir)

	dir, err = l.ExportDir("/backups/monday")
	require.NoError(t, err)
	assert.Equal(t, "/backups/monday", dir)

	_, err = Layout{}.ExportDir("")
	assert.ErrorIs(t, err, types.ErrDataDirEmpty)
}
