// Package report renders import summaries for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
)

// Format is a report output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Summary totals a set of import results.
type Summary struct {
	Files             int `json:"files"`
	Failed            int `json:"failed"`
	Imported          int `json:"imported"`
	Duplicates        int `json:"duplicates"`
	CorrectedExisting int `json:"corrected_existing"`
	Categorized       int `json:"categorized"`
	MarkedRecurring   int `json:"marked_recurring"`
	SkippedRows       int `json:"skipped_rows"`
}

// Summarize totals results; nil entries are ignored.
func Summarize(results []*models.ImportResult) Summary {
	var s Summary
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Files++
		if r.Failed() {
			s.Failed++
		}
		s.Imported += r.Imported
		s.Duplicates += r.Duplicates
		s.CorrectedExisting += r.CorrectedExisting
		s.Categorized += r.Categorized
		s.MarkedRecurring += r.MarkedRecurring
		s.SkippedRows += r.SkippedRows
	}
	return s
}

// Generator writes import reports.
type Generator struct {
	logger logging.Logger
}

// NewGenerator returns a Generator.
func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{logger: logging.OrDefault(logger)}
}

type jsonReport struct {
	Summary Summary                `json:"summary"`
	Results []*models.ImportResult `json:"results"`
}

// Generate writes results to w in format.
func (g *Generator) Generate(w io.Writer, results []*models.ImportResult, format Format) error {
	switch format {
	case FormatJSON:
		return g.generateJSON(w, results)
	case FormatText, "":
		return g.generateText(w, results)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *Generator) generateJSON(w io.Writer, results []*models.ImportResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonReport{Summary: Summarize(results), Results: results}); err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return nil
}

func (g *Generator) generateText(w io.Writer, results []*models.ImportResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tINSTITUTION\tCARD\tROWS\tIMPORTED\tDUPLICATES\tCORRECTED\tCATEGORIZED\tRECURRING\tSKIPPED")
	for _, r := range results {
		if r == nil {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			r.File, r.Institution, dash(r.CardNumber), r.RowCount, r.Imported, r.Duplicates,
			r.CorrectedExisting, r.Categorized, r.MarkedRecurring, r.SkippedRows)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "error   %s: %s\n", r.File, e)
		}
		for _, wn := range r.Warnings {
			fmt.Fprintf(w, "warning %s: %s\n", r.File, wn)
		}
	}

	s := Summarize(results)
	_, err := fmt.Fprintf(w, "\n%d file(s), %d failed: %d imported, %d duplicates, %d corrected, %d categorized\n",
		s.Files, s.Failed, s.Imported, s.Duplicates, s.CorrectedExisting, s.Categorized)
	return err
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
