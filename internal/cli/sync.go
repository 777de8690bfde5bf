package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/botsync/internal/sqlite"
	"github.com/mesh-intelligence/botsync/internal/syncer"
)

func newSyncCmd(a *app) *cobra.Command {
	var (
		botID         string
		integrationID string
		all           bool
	)
	cmd := &cobra.Command{
		Use:   "sync [fqdn]",
		Short: "Sync a server, a bot or an integration",
		Long: "Fetch snapshots from a build server and reconcile them into the store.\n\n" +
			"  botsync sync ci.example.com                 server versions, bots and devices\n" +
			"  botsync sync ci.example.com --all           the above plus every bot's integrations\n" +
			"  botsync sync ci.example.com --bot <id>      one bot with its integrations\n" +
			"  botsync sync --integration <id>             one integration already in the store",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fqdn string
			if len(args) == 1 {
				fqdn = args[0]
			}
			var req syncer.Request
			switch {
			case integrationID != "":
				req = syncer.SyncIntegration(integrationID)
			case fqdn == "":
				return errors.New("sync needs a server unless --integration is given")
			case botID != "":
				req = syncer.SyncBot(fqdn, botID)
			case all:
				req = syncer.SyncAll(fqdn)
			default:
				req = syncer.SyncServer(fqdn)
			}
			return a.runRequest(cmd, req)
		},
	}
	cmd.Flags().StringVar(&botID, "bot", "", "sync only this bot")
	cmd.Flags().StringVar(&integrationID, "integration", "", "sync only this integration")
	cmd.Flags().BoolVar(&all, "all", false, "also sync every bot of the server")
	cmd.MarkFlagsMutuallyExclusive("bot", "integration", "all")
	return cmd
}

func newIntegrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "integrate <fqdn> <bot-id>",
		Short: "Start an integration of a bot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRequest(cmd, syncer.StartIntegration(args[0], args[1]))
		},
	}
}

func newCancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <integration-id>",
		Short: "Cancel a running integration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRequest(cmd, syncer.CancelIntegration(args[0]))
		},
	}
}

// runRequest runs req to completion, prints its outcome and returns its
// error.
func (a *app) runRequest(cmd *cobra.Command, req syncer.Request) error {
	return a.withBackend(func(b *sqlite.Backend) error {
		out := <-a.orchestrator(b).Start(cmd.Context(), req)
		if err := a.printOutcome(cmd.OutOrStdout(), out); err != nil {
			return err
		}
		return out.Err
	})
}

// outcomeJSON is the --json rendering of a syncer.Outcome.
type outcomeJSON struct {
	Request      string         `json:"request"`
	State        string         `json:"state"`
	Error        string         `json:"error,omitempty"`
	Created      map[string]int `json:"created,omitempty"`
	Deleted      map[string]int `json:"deleted,omitempty"`
	LinksAdded   int            `json:"links_added"`
	LinksRemoved int            `json:"links_removed"`
	Skipped      []string       `json:"skipped,omitempty"`
	DurationMS   int64          `json:"duration_ms"`
}

func (a *app) printOutcome(w io.Writer, out syncer.Outcome) error {
	if !a.jsonMode {
		if out.OK() {
			_, err := fmt.Fprintf(w, "%s: %s (%s)\n", out.Request, out.State, out.Report)
			return err
		}
		_, err := fmt.Fprintf(w, "%s: %s\n", out.Request, out.State)
		return err
	}

	j := outcomeJSON{
		Request:      out.Request.String(),
		State:        out.State.String(),
		Created:      map[string]int{},
		Deleted:      map[string]int{},
		LinksAdded:   out.Report.LinksAdded,
		LinksRemoved: out.Report.LinksRemoved,
		DurationMS:   out.Finished.Sub(out.Started).Milliseconds(),
	}
	if out.Err != nil {
		j.Error = out.Err.Error()
	}
	for k, n := range out.Report.Created {
		j.Created[string(k)] = n
	}
	for k, n := range out.Report.Deleted {
		j.Deleted[string(k)] = n
	}
	for _, an := range out.Report.Anomalies {
		j.Skipped = append(j.Skipped, an.String())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(j)
}
