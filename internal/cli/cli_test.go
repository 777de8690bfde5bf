package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/botsync/internal/paths"
	"github.com/mesh-intelligence/botsync/internal/sqlite"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// testEnv is a config and data directory pair for running commands.
type testEnv struct {
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("BOTSYNC_LOG_LEVEL", "")
	return &testEnv{
		configDir: filepath.Join(t.TempDir(), "config"),
		dataDir:   filepath.Join(t.TempDir(), "data"),
	}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "botsync %v", args)
	return out
}

// newBuildServer serves a one-bot build server over plain HTTP and returns
// its host and port.
func newBuildServer(t *testing.T) (string, string) {
	t.Helper()
	mux := http.NewServeMux()
	reply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, body)
		}
	}
	mux.HandleFunc("GET /api/versions", reply(`{"serverVersion":"2.0","xcodeVersion":"15.2"}`))
	mux.HandleFunc("GET /api/bots", reply(`{"count":1,"results":[{"_id":"bot-1","name":"Nightly"}]}`))
	mux.HandleFunc("GET /api/devices", reply(`{"count":1,"results":[{"_id":"dev-1","name":"iPhone"}]}`))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return u.Hostname(), u.Port()
}

func TestVersion(t *testing.T) {
	out := newTestEnv(t).mustRun(t, "version")
	assert.Contains(t, out, "botsync v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	e := newTestEnv(t)

	out := e.mustRun(t, "init")
	assert.Contains(t, out, "botsync initialized")
	assert.Contains(t, out, paths.ConfigFile(e.configDir))

	_, err := os.Stat(filepath.Join(e.dataDir, sqlite.DatabaseFile))
	require.NoError(t, err)

	data, err := os.ReadFile(paths.ConfigFile(e.configDir))
	require.NoError(t, err)
	var cfg configFile
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.Equal(t, "5m0s", cfg.PollInterval)
	assert.Equal(t, e.dataDir, cfg.DataDir)

	// Idempotent: a second init keeps the existing config.
	require.NoError(t, os.WriteFile(paths.ConfigFile(e.configDir), []byte("log_level: warn\n"), 0o644))
	e.mustRun(t, "init")
	data, err = os.ReadFile(paths.ConfigFile(e.configDir))
	require.NoError(t, err)
	assert.Equal(t, "log_level: warn\n", string(data))
}

func TestServerAddListRemove(t *testing.T) {
	e := newTestEnv(t)

	e.mustRun(t, "server", "add", "ci.example.com", "--port", "8443", "--username", "ci", "--password-env", "CI_PASSWORD")
	e.mustRun(t, "server", "add", "ci.example.com", "--port", "9443")

	cfg, err := readConfigFile(e.configDir)
	require.NoError(t, err)
	require.Len(t, cfg.Servers, 1, "re-adding replaces the entry")
	assert.Equal(t, 9443, cfg.Servers[0].Port)

	out := e.mustRun(t, "server", "list")
	assert.Contains(t, out, "ci.example.com")
	assert.Contains(t, out, "never")

	out = e.mustRun(t, "--json", "server", "list")
	assert.Contains(t, out, `"configured": true`)

	e.mustRun(t, "server", "remove", "ci.example.com")
	out = e.mustRun(t, "server", "list")
	assert.NotContains(t, out, "ci.example.com")

	_, err = e.run(t, "server", "remove", "ci.example.com")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestServerAddRejectsBadTimeout(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.run(t, "server", "add", "ci.example.com", "--timeout", "soon")
	assert.Error(t, err)

	cfg, err := readConfigFile(e.configDir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Servers)
}

func TestSyncAndShow(t *testing.T) {
	e := newTestEnv(t)
	host, port := newBuildServer(t)
	e.mustRun(t, "server", "add", host, "--scheme", "http", "--port", port)

	out := e.mustRun(t, "sync", host)
	assert.Contains(t, out, "sync-server "+host+": completed")
	assert.Contains(t, out, "bot=1")

	out = e.mustRun(t, "show", "bot", "bot-1")
	assert.Contains(t, out, `"name": "Nightly"`)
	assert.Contains(t, out, `"key": "bot-1"`)

	out = e.mustRun(t, "show", "server", host, "--wire")
	assert.Contains(t, out, `"server_version": "2.0"`)
	assert.NotContains(t, out, "last_synced_at")
	assert.Contains(t, out, "owns: bot=1")

	out = e.mustRun(t, "show", "device")
	assert.Contains(t, out, "dev-1")

	out = e.mustRun(t, "--json", "sync", host)
	assert.Contains(t, out, `"state": "completed"`)
}

func TestSyncFailures(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "init")

	_, err := e.run(t, "sync", "nowhere.example.com")
	assert.ErrorIs(t, err, types.ErrMissingRelatedEntity)
	assert.Equal(t, exitUserError, exitCode(err))

	_, err = e.run(t, "sync")
	assert.Error(t, err)

	_, err = e.run(t, "cancel", "int-9")
	assert.ErrorIs(t, err, types.ErrMissingRelatedEntity)
}

func TestSyncUnreachableServer(t *testing.T) {
	e := newTestEnv(t)
	host, port := newBuildServer(t)
	e.mustRun(t, "server", "add", host, "--scheme", "http", "--port", port, "--timeout", "1s")

	// Point the config at a port nothing listens on.
	cfg, err := readConfigFile(e.configDir)
	require.NoError(t, err)
	cfg.Servers[0].Port = 1
	require.NoError(t, writeConfigFile(e.configDir, cfg))

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir, "sync", host})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err = root.ExecuteContext(ctx)

	assert.ErrorIs(t, err, types.ErrTransport)
	assert.Equal(t, exitSysError, exitCode(err))
}

func TestShowRejectsUnknownKind(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.run(t, "show", "widget")
	assert.ErrorIs(t, err, types.ErrUnknownKind)

	_, err = e.run(t, "show", "bot", "bot-9")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestExportImport(t *testing.T) {
	src := newTestEnv(t)
	src.mustRun(t, "server", "add", "ci.example.com")
	dir := t.TempDir()
	src.mustRun(t, "export", dir)

	dst := newTestEnv(t)
	out := dst.mustRun(t, "import", dir)
	assert.Contains(t, out, "imported 1 rows")

	out = dst.mustRun(t, "show", "server")
	assert.Contains(t, out, "ci.example.com")
}

func TestExportDefaultsToDataDir(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "server", "add", "ci.example.com")

	out := e.mustRun(t, "export")
	want := filepath.Join(e.dataDir, paths.ExportDirName)
	assert.Contains(t, out, want)
	_, err := os.Stat(filepath.Join(want, sqlite.EntitiesFile))
	require.NoError(t, err)

	out = e.mustRun(t, "import")
	assert.Contains(t, out, "imported 0 rows", "rows already in the store are kept")
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOTSYNC_LOG_LEVEL", "")
	t.Setenv("BOTSYNC_POLL_INTERVAL", "")

	s, err := loadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, defaultLogLevel, s.LogLevel)
	assert.Equal(t, 5*time.Minute, s.PollInterval)
	assert.Equal(t, defaultPollConcurrency, s.PollConcurrency)

	config := `
data_dir: /var/lib/botsync
poll_interval: 1m
servers:
  - fqdn: ci.example.com
    port: 8443
    password_env: CI_PASSWORD
    timeout: 10s
`
	require.NoError(t, os.WriteFile(paths.ConfigFile(dir), []byte(config), 0o644))
	t.Setenv("BOTSYNC_LOG_LEVEL", "debug")

	s, err = loadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, time.Minute, s.PollInterval)
	assert.Equal(t, "/var/lib/botsync", s.DataDir)

	srv, ok := s.server("ci.example.com")
	require.True(t, ok)
	t.Setenv("CI_PASSWORD", "hunter2")
	ep, err := srv.Endpoint()
	require.NoError(t, err)
	assert.Equal(t, 8443, ep.Port)
	assert.Equal(t, "hunter2", ep.Password)
	assert.Equal(t, 10*time.Second, ep.Timeout)
}

func TestLoadSettingsRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(paths.ConfigFile(dir), []byte("servers: [\n"), 0o644))
	_, err := loadSettings(dir)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "warn")
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = newLogger(&buf, "loud")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitSuccess},
		{errors.New("bad flag"), exitUserError},
		{fmt.Errorf("%w: x", types.ErrMissingRelatedEntity), exitUserError},
		{fmt.Errorf("%w: x", types.ErrTransport), exitSysError},
		{fmt.Errorf("%w: x", types.ErrEmptyResponse), exitSysError},
		{fmt.Errorf("%w: x", types.ErrStoreCommit), exitSysError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), "%v", tt.err)
	}
}
