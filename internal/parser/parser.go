// Package parser defines the tabular form every statement format is read
// into, and the pieces shared by the format-specific parsers.
package parser

import (
	"context"
	"strings"
	"time"

	"fjacquet/bank-ingest/internal/dateutils"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/parsererror"
)

// Format is a statement file format.
type Format string

const (
	FormatDelimited   Format = "delimited"
	FormatSpreadsheet Format = "spreadsheet"
	FormatPDF         Format = "pdf"
)

// Header discovery: the header is the first row, among the first
// MaxHeaderScan rows, with at least MinHeaderCells non-empty cells.
const (
	MaxHeaderScan  = 10
	MinHeaderCells = 3
)

// Source is one raw statement file handed to a parser.
type Source struct {
	Name        string
	Data        []byte
	Institution models.Institution
}

// Cell is one table cell. Date is set when the file stored a native date.
type Cell struct {
	Text string
	Date *time.Time
}

// TextCell builds a Cell holding only text.
func TextCell(s string) Cell { return Cell{Text: s} }

// DateCell builds a Cell holding a native date; its text is the ISO date.
func DateCell(t time.Time) Cell {
	return Cell{Text: dateutils.ToISODate(t), Date: &t}
}

// Metadata is statement-level information found outside the table.
type Metadata struct {
	// Institution is set by parsers that identify the issuer themselves,
	// such as the PDF parser working on extracted text.
	Institution models.Institution
	// Banner is the text above the header row.
	Banner        string
	AccountNumber string
	HolderName    string
}

// Table is a header row plus data rows.
type Table struct {
	Headers []string
	Rows    [][]Cell
	Meta    Metadata
}

// TextRows returns the rows as plain strings.
func (t *Table) TextRows() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = make([]string, len(row))
		for j, c := range row {
			out[i][j] = c.Text
		}
	}
	return out
}

// Parser reads one statement format into a Table.
type Parser interface {
	Format() Format
	Parse(ctx context.Context, src Source) (*Table, error)
}

// FindHeaderRow returns the index of the header row, or -1.
func FindHeaderRow(rows [][]Cell) int {
	for i := 0; i < len(rows) && i < MaxHeaderScan; i++ {
		if nonEmpty(rows[i]) >= MinHeaderCells {
			return i
		}
	}
	return -1
}

// BuildTable locates the header row in rows and returns the table below
// it. Blank rows are dropped and the lines above the header become the
// banner.
func BuildTable(name string, rows [][]Cell) (*Table, error) {
	h := FindHeaderRow(rows)
	if h < 0 {
		return nil, &parsererror.DataExtractionError{File: name, Reason: "no header row found in the first 10 rows"}
	}

	headers := make([]string, len(rows[h]))
	for i, c := range rows[h] {
		headers[i] = strings.TrimSpace(c.Text)
	}

	var banner []string
	for _, row := range rows[:h] {
		if line := joinRow(row); line != "" {
			banner = append(banner, line)
		}
	}

	t := &Table{Headers: headers, Meta: Metadata{Banner: strings.Join(banner, "\n")}}
	for _, row := range rows[h+1:] {
		if nonEmpty(row) == 0 {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return nil, &parsererror.DataExtractionError{File: name, Reason: "header row found but no data rows follow it"}
	}
	return t, nil
}

func nonEmpty(row []Cell) int {
	n := 0
	for _, c := range row {
		if strings.TrimSpace(c.Text) != "" {
			n++
		}
	}
	return n
}

func joinRow(row []Cell) string {
	parts := make([]string, 0, len(row))
	for _, c := range row {
		if s := strings.TrimSpace(c.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// BaseParser is embedded by format parsers for shared logging.
type BaseParser struct {
	logger logging.Logger
}

// NewBaseParser returns a BaseParser; a nil logger gets the default logger.
func NewBaseParser(logger logging.Logger) BaseParser {
	return BaseParser{logger: logging.OrDefault(logger)}
}

// Logger returns the parser's logger.
func (b *BaseParser) Logger() logging.Logger {
	return b.logger
}

// SetLogger replaces the logger; nil is ignored.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}
