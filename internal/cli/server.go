package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/botsync/internal/sqlite"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

func newServerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Manage build servers",
	}
	cmd.AddCommand(newServerAddCmd(a), newServerListCmd(a), newServerRemoveCmd(a))
	return cmd
}

func newServerAddCmd(a *app) *cobra.Command {
	var s ServerSettings
	cmd := &cobra.Command{
		Use:   "add <fqdn>",
		Short: "Register a build server",
		Long: "Register a build server in the store and record how to reach it in\n" +
			"config.yaml. Re-adding a server updates its connection settings.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s.FQDN = args[0]
			if _, err := s.Endpoint(); err != nil {
				return err
			}
			cfg, err := readConfigFile(a.configDir)
			if err != nil {
				return err
			}
			err = a.withBackend(func(b *sqlite.Backend) error {
				return withSession(cmd.Context(), b, func(sess *sqlite.Session) error {
					if sess.Find(types.KindServer, s.FQDN) != nil {
						return nil
					}
					_, err := sess.Create(types.KindServer, s.FQDN, "")
					return err
				})
			})
			if err != nil {
				return err
			}
			cfg.putServer(s)
			if err := writeConfigFile(a.configDir, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added server %s\n", s.FQDN)
			return nil
		},
	}
	cmd.Flags().IntVar(&s.Port, "port", 0, "API port (default 20343)")
	cmd.Flags().StringVar(&s.Scheme, "scheme", "", "http or https (default https)")
	cmd.Flags().StringVar(&s.Username, "username", "", "basic auth user")
	cmd.Flags().StringVar(&s.PasswordEnv, "password-env", "", "environment variable holding the password")
	cmd.Flags().BoolVar(&s.InsecureSkipVerify, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().StringVar(&s.Timeout, "timeout", "", "per-request timeout, e.g. 30s")
	return cmd
}

// serverRow is one line of server list output.
type serverRow struct {
	FQDN          string    `json:"fqdn"`
	ServerVersion string    `json:"server_version,omitempty"`
	XcodeVersion  string    `json:"xcode_version,omitempty"`
	Bots          int       `json:"bots"`
	Configured    bool      `json:"configured"`
	LastSyncedAt  time.Time `json:"last_synced_at,omitempty"`
}

func newServerListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered build servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rows []serverRow
			err := a.withBackend(func(b *sqlite.Backend) error {
				sess, err := b.Begin(cmd.Context())
				if err != nil {
					return err
				}
				defer sess.Discard()
				for _, e := range sess.All(types.KindServer) {
					srv := e.(*types.Server)
					_, configured := a.settings.server(srv.FQDN())
					rows = append(rows, serverRow{
						FQDN:          srv.FQDN(),
						ServerVersion: srv.ServerVersion,
						XcodeVersion:  srv.XcodeVersion,
						Bots:          len(sess.Children(srv.LocalID, types.KindBot)),
						Configured:    configured,
						LastSyncedAt:  srv.LastSyncedAt,
					})
				}
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonMode {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FQDN\tVERSION\tBOTS\tCONFIGURED\tLAST SYNC")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\n", r.FQDN, r.ServerVersion, r.Bots, r.Configured, formatTime(r.LastSyncedAt))
			}
			return tw.Flush()
		},
	}
}

func newServerRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <fqdn>",
		Short: "Remove a build server and everything synced from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fqdn := args[0]
			found := false
			err := a.withBackend(func(b *sqlite.Backend) error {
				return withSession(cmd.Context(), b, func(sess *sqlite.Session) error {
					if e := sess.Find(types.KindServer, fqdn); e != nil {
						sess.Delete(e)
						found = true
					}
					return nil
				})
			})
			if err != nil {
				return err
			}
			cfg, err := readConfigFile(a.configDir)
			if err != nil {
				return err
			}
			if cfg.dropServer(fqdn) {
				found = true
				if err := writeConfigFile(a.configDir, cfg); err != nil {
					return err
				}
			}
			if !found {
				return fmt.Errorf("%w: server %q", types.ErrNotFound, fqdn)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed server %s\n", fqdn)
			return nil
		},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
