// Package categorize handles transaction categorization commands.
package categorize

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fjacquet/bank-ingest/cmd/root"
	"fjacquet/bank-ingest/internal/categorizer"
)

var listCategories bool

// Cmd represents the categorize command.
var Cmd = &cobra.Command{
	Use:   "categorize [descriptions...]",
	Short: "Categorize transaction descriptions against the stored categories",
	Long: `Categorize free-text transaction descriptions the way import does: the AI
classifier when an API key is configured, then the merchant heuristics and
learned keywords. With --list, print the categories and their IDs.

Example:
  bank-ingest categorize "שופרסל דיל רמת גן" "NETFLIX.COM"
  bank-ingest categorize --list`,
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().BoolVarP(&listCategories, "list", "l", false, "List categories with their IDs and keywords")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	if !listCategories && len(args) == 0 {
		return fmt.Errorf("give at least one description, or --list")
	}
	ctx := cmd.Context()
	app, err := root.GetContainer(ctx)
	if err != nil {
		return err
	}
	cats, err := app.GetStore().Categories().ListCategories(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if listCategories {
		fmt.Fprintln(tw, "ID\tNAME\tALIAS\tKEYWORDS")
		for _, c := range cats {
			kws := make([]string, len(c.Keywords))
			for i, k := range c.Keywords {
				kws[i] = k.Keyword
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.AliasName, strings.Join(kws, ", "))
		}
		return tw.Flush()
	}

	assigned := app.GetOrchestrator().Categorize(ctx, args, categorizer.NewSnapshot(cats))
	for _, d := range args {
		a, ok := assigned[d]
		if !ok {
			fmt.Fprintf(tw, "%s\t-\tuncategorized\n", d)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d, a.Category.Name, a.Strategy)
	}
	return tw.Flush()
}
