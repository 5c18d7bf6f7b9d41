// Package similar implements the similar command.
package similar

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/bank-ingest/cmd/root"
)

// Cmd represents the similar command.
var Cmd = &cobra.Command{
	Use:   "similar <transaction-id> <category-id>",
	Short: "Categorize a transaction and every transaction from the same merchant",
	Long: `Set the category of one transaction, then of every transaction on the
same account whose merchant signature matches. The signature is learned as
a category keyword so future imports are categorized the same way.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := root.GetContainer(ctx)
		if err != nil {
			return err
		}
		res, err := app.GetIngest().ApplyToSimilar(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "updated %d transaction(s)\n", res.Updated)
		if res.Signature != "" {
			fmt.Fprintf(out, "merchant signature: %s (%d similar)\n", res.Signature, res.Matched)
		}
		if res.Skipped {
			fmt.Fprintf(out, "propagation skipped: %s\n", res.Reason)
		}
		return nil
	},
}
