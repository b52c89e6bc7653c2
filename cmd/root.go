// Package cmd defines and implements the CLI commands for the instascrape executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/instascrape/internal/app"
	"github.com/JakeFAU/instascrape/internal/config"
	"github.com/JakeFAU/instascrape/internal/logging"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. It's a variable so tests can swap in
// their own logger or services.
var newApp = func(cfg config.Config) (*app.App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return app.New(cfg, logger)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instascrape",
		Short: "Track an Instagram profile's follower count over time.",
		Long: `instascrape polls a public Instagram profile page on a fixed interval,
reads the follower, following and post counts from the page description,
appends a timestamped line to a log file and optionally posts each result
to a chat webhook.`,
		SilenceUsage: true,

		// Builds the application once flags and config are resolved. Opening the
		// output file happens here, so a bad path aborts before the first cycle.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			appInstance, err := newApp(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, err := resolveApp(cmd.Context()); err == nil {
				appInstance.Close()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (toml, yaml or json)")
	flags.StringP("user", "u", "", "Instagram user to scrape")
	flags.IntP("interval", "i", 0, "seconds to wait between scrapes")
	flags.StringP("output", "o", "", "file to append observations to")
	flags.StringP("webhook", "w", "", "webhook URL to post results to")
	flags.String("metrics", "", "listen address for /metrics and /v1/observation (disabled when empty)")

	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newOnceCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func resolveApp(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		zap.L().Error("Command execution failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}
