package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// newWatchCmd creates the 'watch' subcommand, which runs the poll loop until
// the process is interrupted.
func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Scrape the profile every interval, forever",
		Long: `Runs one scrape cycle immediately and then one cycle per interval.
A failed cycle is logged (and posted to the webhook when configured) and the
loop carries on with the next interval.`,
		Args: cobra.NoArgs,
		RunE: runWatchCommand,
	}
}

func runWatchCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return appInstance.Serve(ctx)
	})
	g.Go(func() error {
		return appInstance.Poller().Run(ctx)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	appInstance.Logger().Info("Watch command finished.", zap.String("user", appInstance.Config().User))
	return nil
}
