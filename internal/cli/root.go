// Package cli implements the botsync command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/botsync/internal/paths"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app holds the global flag values and what PersistentPreRunE loaded from
// them. Every subcommand reads it.
type app struct {
	configDirFlag string
	dataDirFlag   string
	logLevelFlag  string
	jsonMode      bool

	configDir string
	settings  Settings
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "botsync" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "botsync",
		Short: "Mirror build server bots and integrations into a local store",
		Long: "botsync fetches bots, integrations, commits, issues and devices from\n" +
			"build servers and reconciles them into a local entity graph.",
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	root.PersistentFlags().StringVar(&a.configDirFlag, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDirFlag, "data-dir", "", "data directory (default: $(CWD)/"+paths.DataDirName+")")
	root.PersistentFlags().StringVar(&a.logLevelFlag, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newServerCmd(a),
		newSyncCmd(a),
		newPollCmd(a),
		newIntegrateCmd(a),
		newCancelCmd(a),
		newShowCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "botsync:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode maps sync and storage failures to exitSysError and everything
// else, bad arguments and unknown entities included, to exitUserError.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrTransport),
		errors.Is(err, types.ErrEmptyResponse),
		errors.Is(err, types.ErrStoreCommit),
		errors.Is(err, types.ErrBackendDetached):
		return exitSysError
	default:
		return exitUserError
	}
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	dir, err := paths.ConfigDir(a.configDirFlag)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	settings, err := loadSettings(dir)
	if err != nil {
		return err
	}
	if a.logLevelFlag != "" {
		settings.LogLevel = a.logLevelFlag
	}
	logger, err := newLogger(cmd.ErrOrStderr(), settings.LogLevel)
	if err != nil {
		return err
	}
	a.configDir, a.settings, a.logger = dir, settings, logger
	return nil
}

// layout resolves the data directory: --data-dir > config.yaml data_dir >
// BOTSYNC_DATA_DIR > $(CWD)/.botsync-db.
func (a *app) layout() (paths.Layout, error) {
	dataDir, err := paths.DataDir(a.dataDirFlag, a.settings.DataDir)
	if err != nil {
		return paths.Layout{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return paths.Layout{ConfigDir: a.configDir, DataDir: dataDir}, nil
}
