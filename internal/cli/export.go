package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/botsync/internal/paths"
	"github.com/mesh-intelligence/botsync/internal/sqlite"
)

// exportDir resolves the optional directory argument of export and import.
func (a *app) exportDir(args []string) (string, error) {
	l, err := a.layout()
	if err != nil {
		return "", err
	}
	var dir string
	if len(args) > 0 {
		dir = args[0]
	}
	return l.ExportDir(dir)
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "Write the store to JSONL files",
		Long: "Write every entity and link to " + sqlite.EntitiesFile + " and " + sqlite.LinksFile + " in dir.\n" +
			"Without dir the files go to " + paths.ExportDirName + " in the data directory.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.exportDir(args)
			if err != nil {
				return err
			}
			return a.withBackend(func(b *sqlite.Backend) error {
				if err := b.Export(cmd.Context(), dir); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", dir)
				return nil
			})
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [dir]",
		Short: "Load JSONL files written by export",
		Long: "Insert the entities and links of an export. Rows already in the store are kept.\n" +
			"Without dir the files are read from " + paths.ExportDirName + " in the data directory.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.exportDir(args)
			if err != nil {
				return err
			}
			return a.withBackend(func(b *sqlite.Backend) error {
				n, err := b.Import(cmd.Context(), dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows\n", n)
				return nil
			})
		},
	}
}
