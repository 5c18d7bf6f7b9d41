// Package importcmd implements the import command.
package importcmd

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"fjacquet/bank-ingest/cmd/root"
	"fjacquet/bank-ingest/internal/batch"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/report"
)

var (
	inputDir   string
	recursive  bool
	jsonOutput bool
	noProgress bool
)

// Cmd represents the import command.
var Cmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Import statement files into the ledger",
	Long: `Import one or more statement files, or every statement in a directory.

Each file is parsed, de-duplicated against what is already stored for its
account, categorized and saved. Files are processed concurrently; a file
that cannot be read is reported and does not stop the others.

Example:
  bank-ingest import isracard_2024_03.xlsx leumi.csv
  bank-ingest import --dir ~/Downloads/statements --json`,
	RunE: importFunc,
}

func init() {
	Cmd.Flags().StringVarP(&inputDir, "dir", "d", "", "Import every statement file in this directory")
	Cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Also scan subdirectories of --dir")
	Cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	Cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Hide the progress bar")
}

func importFunc(cmd *cobra.Command, args []string) error {
	collector := batch.NewCollector(root.Log)
	paths := append([]string(nil), args...)
	if inputDir != "" {
		found, err := collector.CollectStatementFiles(inputDir, recursive)
		if err != nil {
			return err
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no statement files given: pass file paths or --dir")
	}

	files, err := collector.Load(paths)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := root.GetContainer(ctx)
	if err != nil {
		return err
	}

	var onDone func(*models.ImportResult)
	if !noProgress && !jsonOutput {
		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Importing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish())
		onDone = func(*models.ImportResult) { _ = bar.Add(1) }
		defer func() { _ = bar.Finish() }()
	}

	results, err := app.GetIngest().ImportAll(ctx, files, onDone)
	if err != nil {
		return err
	}

	format := report.FormatText
	if jsonOutput {
		format = report.FormatJSON
	}
	if err := report.NewGenerator(root.Log).Generate(cmd.OutOrStdout(), results, format); err != nil {
		return err
	}

	if s := report.Summarize(results); s.Files > 0 && s.Failed == s.Files {
		return fmt.Errorf("no file could be imported")
	}
	return nil
}
