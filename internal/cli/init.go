package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize botsync storage",
		Long:  "Create the configuration and data directories, write a default\nconfig.yaml if there is none, then initialize the store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	l, err := a.layout()
	if err != nil {
		return err
	}

	if _, err := os.Stat(l.ConfigFile()); os.IsNotExist(err) {
		if err := writeConfigFile(l.ConfigDir, defaultConfigFile(a.dataDirFlag)); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
	}

	b, err := openBackend(l, a.logger)
	if err != nil {
		return err
	}
	if err := b.Detach(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "botsync initialized in %s\n", l.DataDir)
	fmt.Fprintf(out, "config: %s\n", l.ConfigFile())
	return nil
}
