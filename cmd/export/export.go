// Package export implements the export command.
package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/bank-ingest/cmd/root"
	"fjacquet/bank-ingest/internal/common"
	"fjacquet/bank-ingest/internal/models"
)

var (
	accountID string
	output    string
	delimiter string
)

// Cmd represents the export command.
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored transactions as CSV",
	Long: `Export stored transactions, with their category names and recurring flag,
as CSV to stdout or to --output.`,
	Args: cobra.NoArgs,
	RunE: exportFunc,
}

func init() {
	Cmd.Flags().StringVarP(&accountID, "account", "a", "", "Limit to one account ID")
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV file (default: stdout)")
	Cmd.Flags().StringVar(&delimiter, "delimiter", ",", "CSV field delimiter")
}

func exportFunc(cmd *cobra.Command, args []string) error {
	delim := []rune(delimiter)
	if len(delim) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}
	ctx := cmd.Context()
	app, err := root.GetContainer(ctx)
	if err != nil {
		return err
	}
	st := app.GetStore()

	cats, err := st.Categories().ListCategories(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	txns, err := st.Transactions().ListTransactions(ctx, models.TransactionFilter{AccountID: accountID})
	if err != nil {
		return err
	}

	rows := make([]common.TransactionRow, len(txns))
	for i, t := range txns {
		rows[i] = common.RowFromStored(t, names)
	}
	w := common.NewWriter(delim[0], root.Log)
	if output == "" {
		return w.Write(cmd.OutOrStdout(), rows)
	}
	return w.WriteFile(output, rows)
}
