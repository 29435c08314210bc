package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cardkey/cardkey/internal/export"
	"github.com/cardkey/cardkey/internal/i18n"
	"github.com/cardkey/cardkey/internal/model"
	"github.com/cardkey/cardkey/internal/service"
)

func newGenerateCmd() *cobra.Command {
	var (
		noExport   bool
		exportDir  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "generate [count] [prefix] [length]",
		Aliases: []string{"gen"},
		Short:   "Generate a batch of redemption keys",
		Long: `Generate a batch of random keys, append them to keys.json and write
keys.txt and keys.csv for this batch.

count defaults to 10 and length to 16. length is the total key length,
including the prefix and the '-' separators between groups of four.`,
		Example: `  cardkey generate
  cardkey generate 10 VIP 16
  cardkey generate 100 "" 19 --no-export`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseGenerateArgs(args)
			if err != nil {
				return err
			}
			return runGenerate(cmd, opts, !noExport, exportDir, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&noExport, "no-export", false, "Do not write keys.txt and keys.csv")
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "Directory for keys.txt and keys.csv (default: data dir)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// parseGenerateArgs maps the positional [count] [prefix] [length] arguments.
// Missing or zero values fall back to the generator defaults.
func parseGenerateArgs(args []string) (service.GenerateOptions, error) {
	var opts service.GenerateOptions
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return opts, fmt.Errorf("invalid count %q: must be an integer", args[0])
		}
		opts.Count = n
	}
	if len(args) > 1 {
		opts.Prefix = args[1]
	}
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return opts, fmt.Errorf("invalid length %q: must be an integer", args[2])
		}
		opts.Length = n
	}
	return opts, nil
}

type generateOutput struct {
	Generated int               `json:"generated"`
	Requested int               `json:"requested"`
	Partial   bool              `json:"partial"`
	Store     string            `json:"store"`
	CodesFile string            `json:"codes_file,omitempty"`
	CSVFile   string            `json:"csv_file,omitempty"`
	Keys      []model.KeyRecord `json:"keys"`
}

func runGenerate(cmd *cobra.Command, opts service.GenerateOptions, writeExports bool, exportDir string, jsonOutput bool) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !jsonOutput {
		fmt.Fprintln(out, titleStyle.Render(i18n.T("gen_start")))
		fmt.Fprintln(out)
	}

	batch, err := a.generator().Run(context.Background(), opts)
	if err != nil {
		return err
	}

	var files export.Files
	if writeExports && a.cfg.Export {
		if exportDir == "" {
			exportDir = a.cfg.ExportPath()
		}
		files, err = export.WriteFiles(exportDir, batch.Records)
		if err != nil {
			return fmt.Errorf("write exports: %w", err)
		}
	}

	if jsonOutput {
		return writeJSON(out, generateOutput{
			Generated: len(batch.Records),
			Requested: batch.Requested,
			Partial:   batch.Partial(),
			Store:     a.store.Path(),
			CodesFile: files.Codes,
			CSVFile:   files.CSV,
			Keys:      batch.Records,
		})
	}

	prefix := i18n.T("gen_prefix_none")
	if opts.Prefix != "" {
		prefix = opts.Prefix
	}
	length := opts.Length
	if length == 0 {
		length = service.DefaultLength
	}

	lines := []string{
		i18n.T("gen_count", len(batch.Records)),
		i18n.T("gen_prefix", prefix),
		i18n.T("gen_length", length),
		i18n.T("gen_time", formatTime(batch.CreatedAt)),
		"",
		i18n.T("gen_keys"),
	}
	for i, r := range batch.Records {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, r.Code))
	}
	fmt.Fprintln(out, panel(i18n.T("gen_summary_title"), lines...))

	if batch.Partial() {
		fmt.Fprintln(out, warnStyle.Render(i18n.T("gen_partial", len(batch.Records), batch.Requested)))
	}

	fmt.Fprintln(out, okStyle.Render("✓ ")+i18n.T("gen_saved_store", a.store.Path()))
	if files.Codes != "" {
		fmt.Fprintln(out, okStyle.Render("✓ ")+i18n.T("gen_saved_list", files.Codes))
		fmt.Fprintln(out, okStyle.Render("✓ ")+i18n.T("gen_saved_csv", files.CSV))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render(i18n.T("gen_done")))
	return nil
}
