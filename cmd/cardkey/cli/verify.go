package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardkey/cardkey/internal/i18n"
	"github.com/cardkey/cardkey/internal/model"
)

func newVerifyCmd() *cobra.Command {
	var (
		yes        bool
		noConsume  bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "verify [key]",
		Short: "Verify a key and optionally mark it as used",
		Long: `Verify a key against the key store. Case, spaces and separators in the
input are ignored.

A valid key can be marked as used by answering the y/n prompt (typed or
piped, e.g. "echo y | cardkey verify KEY"), or directly with --yes. --json
never prompts, so combine it with --yes to consume. Without a key, usage
statistics are printed.

Exits with status 2 when the key store is missing or unreadable.`,
		Example: `  cardkey verify VIP1-ABCD-EF23
  cardkey verify vip1abcdef23 --yes
  cardkey verify VIP1-ABCD-EF23 --no-consume --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runVerifyUsage(cmd)
			}
			return runVerify(cmd, args[0], yes, noConsume, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Mark a valid key as used without prompting")
	cmd.Flags().BoolVar(&noConsume, "no-consume", false, "Only check the key, never mark it as used")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.MarkFlagsMutuallyExclusive("yes", "no-consume")

	return cmd
}

func runVerifyUsage(cmd *cobra.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, i18n.T("verify_usage"))
	fmt.Fprintln(out, dimStyle.Render(i18n.T("verify_example")))
	fmt.Fprintln(out)

	stats, err := a.verifier().Stats(context.Background())
	if err != nil {
		return storeError(err)
	}
	renderStats(out, stats)
	return nil
}

type verifyOutput struct {
	model.VerifyResult
	Message  string `json:"message"`
	Consumed bool   `json:"consumed"`
}

func runVerify(cmd *cobra.Command, input string, yes, noConsume, jsonOutput bool) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	ctx := context.Background()
	v := a.verifier()

	if !jsonOutput {
		fmt.Fprintln(out, i18n.T("verify_checking", input))
		fmt.Fprintln(out)
	}

	res, err := v.Verify(ctx, input)
	if err != nil {
		return storeError(err)
	}

	if !jsonOutput {
		renderResult(out, res)
	}

	consumed := false
	if res.Kind == model.ResultSuccess && !noConsume {
		ok := yes
		if !ok && !jsonOutput {
			in := cmd.InOrStdin()
			fmt.Fprintln(out)
			answer, err := ask(in, out, i18n.T("consume_prompt"))
			if err != nil {
				return err
			}
			ok = affirmative(answer)
			if !ok {
				if answer == "" && !isTerminal(in) {
					fmt.Fprintln(out)
					fmt.Fprintln(out, dimStyle.Render(i18n.T("consume_not_interactive")))
				} else {
					fmt.Fprintln(out, dimStyle.Render(i18n.T("consume_skipped")))
				}
			}
		}

		if ok {
			rec, err := v.Consume(ctx, res.Record.Code, consumer())
			if err != nil {
				return storeError(err)
			}
			res.Record = rec
			consumed = true
			if !jsonOutput {
				fmt.Fprintln(out, okStyle.Render("✓ ")+i18n.T("consume_done"))
			}
		}
	}

	if jsonOutput {
		return writeJSON(out, verifyOutput{
			VerifyResult: res,
			Message:      resultMessage(res),
			Consumed:     consumed,
		})
	}

	fmt.Fprintln(out)
	stats, err := v.Stats(ctx)
	if err != nil {
		return storeError(err)
	}
	renderStats(out, stats)
	return nil
}
