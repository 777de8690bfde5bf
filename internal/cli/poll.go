package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/botsync/internal/sqlite"
	"github.com/mesh-intelligence/botsync/internal/syncer"
)

func newPollCmd(a *app) *cobra.Command {
	var (
		interval time.Duration
		once     bool
	)
	cmd := &cobra.Command{
		Use:   "poll [fqdn...]",
		Short: "Sync servers repeatedly until interrupted",
		Long: "Run a full sync of each server every poll interval. Without arguments\n" +
			"every server in config.yaml is polled.",
		RunE: func(cmd *cobra.Command, args []string) error {
			servers := args
			if len(servers) == 0 {
				for _, s := range a.settings.Servers {
					servers = append(servers, s.FQDN)
				}
			}
			if len(servers) == 0 {
				return errors.New("no servers to poll; add one with 'botsync server add'")
			}
			if interval <= 0 {
				interval = a.settings.PollInterval
			}

			return a.withBackend(func(b *sqlite.Backend) error {
				p := syncer.NewPoller(a.orchestrator(b), servers,
					syncer.WithInterval(interval),
					syncer.WithServerConcurrency(a.settings.PollConcurrency),
					syncer.WithPollerLogger(a.logger))
				if once {
					var errs []error
					for _, out := range p.Poll(cmd.Context()) {
						if err := a.printOutcome(cmd.OutOrStdout(), out); err != nil {
							return err
						}
						errs = append(errs, out.Err)
					}
					return errors.Join(errs...)
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				a.logger.Info("polling", "servers", servers, "interval", interval)
				return p.Run(ctx)
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "pause between rounds (default from config)")
	cmd.Flags().BoolVar(&once, "once", false, "run a single round and exit")
	return cmd
}
