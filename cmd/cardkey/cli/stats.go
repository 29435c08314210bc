package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show key usage statistics",
		Long:  "Show how many keys are stored, how many have been used and how many are still available.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runStats(cmd *cobra.Command, jsonOutput bool) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	stats, err := a.verifier().Stats(context.Background())
	if err != nil {
		return storeError(err)
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), stats)
	}
	renderStats(cmd.OutOrStdout(), stats)
	return nil
}
