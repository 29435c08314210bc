package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardkey/cardkey/internal/i18n"
	"github.com/cardkey/cardkey/internal/model"
)

func newListCmd() *cobra.Command {
	var (
		unused     bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored keys",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, unused, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&unused, "unused", false, "Only list keys that have not been used")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runList(cmd *cobra.Command, unused, jsonOutput bool) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	records, err := a.verifier().Load(context.Background())
	if err != nil {
		return storeError(err)
	}

	if unused {
		filtered := make([]model.KeyRecord, 0, len(records))
		for _, r := range records {
			if !r.Used {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), records)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T("list_empty"))
		return nil
	}
	renderRecords(cmd.OutOrStdout(), records)
	return nil
}
