package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newOnceCmd creates the 'once' subcommand: a single cycle whose observation
// is printed as JSON.
func newOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single scrape cycle and print the counters",
		Args:  cobra.NoArgs,
		RunE:  runOnceCommand,
	}
}

func runOnceCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	obs, err := appInstance.Poller().Cycle(cmd.Context())
	if err != nil {
		return fmt.Errorf("scrape %s: %w", appInstance.Config().User, err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(obs); err != nil {
		return fmt.Errorf("encode observation: %w", err)
	}
	return nil
}
