// Package detect implements the detect command.
package detect

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fjacquet/bank-ingest/cmd/root"
	"fjacquet/bank-ingest/internal/batch"
	"fjacquet/bank-ingest/internal/columns"
	"fjacquet/bank-ingest/internal/ingest"
)

// Cmd represents the detect command.
var Cmd = &cobra.Command{
	Use:   "detect <files...>",
	Short: "Show the detected institution and column mapping of statements",
	Long: `Detect which institution produced each file, which parser reads it and
which column holds each field. Useful when a new export layout is rejected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: detectFunc,
}

func detectFunc(cmd *cobra.Command, args []string) error {
	files, err := batch.NewCollector(root.Log).Load(args)
	if err != nil {
		return err
	}
	svc := ingest.NewService(ingest.Options{}, root.Log)
	out := cmd.OutOrStdout()

	for _, f := range files {
		got, err := svc.Inspect(cmd.Context(), f)
		fmt.Fprintf(out, "%s\n  institution: %s\n", f.Name, got.Institution)
		if got.Format != "" {
			fmt.Fprintf(out, "  format:      %s\n", got.Format)
		}
		if got.CardNumber != "" {
			fmt.Fprintf(out, "  card:        %s\n", got.CardNumber)
		}
		if got.Headers != nil {
			fmt.Fprintf(out, "  rows:        %d\n", got.Rows)
		}
		if err != nil {
			fmt.Fprintf(out, "  error:       %v\n\n", err)
			continue
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, field := range columns.FieldOrder() {
			col := got.Mapping.Column(field)
			if col < 0 {
				continue
			}
			fmt.Fprintf(tw, "  %s\t%d\t%s\t(%s)\n", field, col, got.Headers[col], got.Mapping.Source(field))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return nil
}
