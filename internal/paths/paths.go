// Package paths locates the botsync configuration file, the entity store
// and store exports.
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/botsync/pkg/types"
)

// AppName names the per-user configuration directory.
const AppName = "botsync"

// File and directory names.
const (
	ConfigFileName = "config.yaml"
	DataDirName    = ".botsync-db" // under the working directory
	ExportDirName  = "exports"     // under the data directory
)

// Environment overrides.
const (
	EnvConfigDir = "BOTSYNC_CONFIG_DIR"
	EnvDataDir   = "BOTSYNC_DATA_DIR"
)

// host is the process environment. Tests replace it.
var host = struct {
	getenv        func(string) string
	getwd         func() (string, error)
	userConfigDir func() (string, error)
}{
	getenv:        os.Getenv,
	getwd:         os.Getwd,
	userConfigDir: os.UserConfigDir,
}

// ConfigDir resolves the configuration directory: flag, then
// BOTSYNC_CONFIG_DIR, then botsync under the per-user config directory
// ($XDG_CONFIG_HOME or ~/.config on Linux, ~/Library/Application Support
// on macOS, %AppData% on Windows).
func ConfigDir(flag string) (string, error) {
	if dir := firstSet(flag, host.getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	base, err := host.userConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// DataDir resolves the store directory: flag, then data_dir from
// config.yaml, then BOTSYNC_DATA_DIR, then .botsync-db in the working
// directory.
func DataDir(flag, configured string) (string, error) {
	if dir := firstSet(flag, configured, host.getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := host.getwd()
	if err != nil {
		return "", fmt.Errorf("locating working directory: %w", err)
	}
	return filepath.Join(cwd, DataDirName), nil
}

func firstSet(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ConfigFile returns the configuration file in dir.
func ConfigFile(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// Layout is where one botsync invocation keeps its files.
type Layout struct {
	ConfigDir string
	DataDir   string
}

// ConfigFile returns the layout's configuration file.
func (l Layout) ConfigFile() string {
	return ConfigFile(l.ConfigDir)
}

// Store returns the backend configuration of the layout's entity store.
func (l Layout) Store() types.Config {
	return types.Config{Backend: types.BackendSQLite, DataDir: l.DataDir}
}

// ExportDir returns dir as an absolute path, or the exports directory of
// the store when dir is empty.
func (l Layout) ExportDir(dir string) (string, error) {
	if dir == "" {
		if l.DataDir == "" {
			return "", types.ErrDataDirEmpty
		}
		return filepath.Join(l.DataDir, ExportDirName), nil
	}
	return filepath.Abs(dir)
}
