// Package suggest implements the recurring-payment suggestion commands.
package suggest

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fjacquet/bank-ingest/cmd/root"
	"fjacquet/bank-ingest/internal/dateutils"
)

var accountID string

// now is replaced in tests.
var now = time.Now

// Cmd groups the suggestion sub-commands.
var Cmd = &cobra.Command{
	Use:   "suggest",
	Short: "Review recurring-payment suggestions",
	Long: `Suggest merchants to mark as recurring (paid in at least three consecutive
months, last seen recently, with a stable amount) and recurring merchants
that have gone silent. Accept a suggestion to apply it, or dismiss it to
hide it for the configured snooze period.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the current suggestions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := root.GetContainer(ctx)
		if err != nil {
			return err
		}
		list, err := app.GetRecurring().List(ctx, accountID, now())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no suggestions")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tACTION\tMERCHANT\tLAST\tMONTHS\tAMOUNT")
		for _, s := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
				s.Key, s.Action, s.Description, dateutils.ToISODate(s.LastDate), s.Periods, s.TypicalAmount.StringFixed(2))
		}
		return tw.Flush()
	},
}

var acceptCmd = &cobra.Command{
	Use:   "accept <key>",
	Short: "Apply a suggestion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := root.GetContainer(ctx)
		if err != nil {
			return err
		}
		sug, n, err := app.GetRecurring().Accept(ctx, accountID, args[0], now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %q: %d transaction(s) updated\n", sug.Action, sug.Signature, n)
		return nil
	},
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss <key>",
	Short: "Hide a suggestion for the snooze period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := root.GetContainer(ctx)
		if err != nil {
			return err
		}
		until, err := app.GetRecurring().Dismiss(ctx, args[0], now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "dismissed until %s\n", dateutils.ToISODate(until))
		return nil
	},
}

func init() {
	Cmd.PersistentFlags().StringVarP(&accountID, "account", "a", "", "Limit to one account ID")
	Cmd.AddCommand(listCmd, acceptCmd, dismissCmd)
}
