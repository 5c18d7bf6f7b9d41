// Package parse implements the parse command: a dry run that prints or
// saves the normalized transactions of one statement without storing them.
package parse

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"fjacquet/bank-ingest/cmd/root"
	"fjacquet/bank-ingest/internal/batch"
	"fjacquet/bank-ingest/internal/common"
	"fjacquet/bank-ingest/internal/ingest"
)

var (
	output    string
	delimiter string
)

// Cmd represents the parse command.
var Cmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a statement and write its transactions as CSV",
	Long: `Parse one statement file and write the normalized transactions as CSV,
to stdout or to --output. Nothing is stored.

Example:
  bank-ingest parse isracard_2024_03.xlsx -o march.csv`,
	Args: cobra.ExactArgs(1),
	RunE: parseFunc,
}

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV file (default: stdout)")
	Cmd.Flags().StringVar(&delimiter, "delimiter", ",", "CSV field delimiter")
}

func parseFunc(cmd *cobra.Command, args []string) error {
	delim := []rune(delimiter)
	if len(delim) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}

	files, err := batch.NewCollector(root.Log).Load(args)
	if err != nil {
		return err
	}
	svc := ingest.NewService(ingest.Options{}, root.Log)
	res, err := svc.Parse(cmd.Context(), files[0])
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(stderr, "error: %s\n", e)
	}
	if res.Failed() {
		return fmt.Errorf("%s could not be parsed", filepath.Base(args[0]))
	}
	fmt.Fprintf(stderr, "%s: %s, %d transactions, %d rows skipped\n",
		files[0].Name, res.Institution, res.SuccessCount, res.SkippedRows)

	rows := make([]common.TransactionRow, len(res.Transactions))
	for i, t := range res.Transactions {
		rows[i] = common.RowFromParsed(t)
	}
	w := common.NewWriter(delim[0], root.Log)
	if output == "" {
		return w.Write(cmd.OutOrStdout(), rows)
	}
	return w.WriteFile(output, rows)
}
