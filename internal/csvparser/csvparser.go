// Package csvparser reads delimited-text statement exports.
package csvparser

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"fjacquet/bank-ingest/internal/institution"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/parser"
	"fjacquet/bank-ingest/internal/parsererror"
)

var candidateDelimiters = []rune{',', ';', '\t', '|'}

// Parser reads delimited text in the institution's code page.
type Parser struct {
	parser.BaseParser
}

// New returns a delimited-text parser.
func New(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(logger)}
}

func (p *Parser) Format() parser.Format { return parser.FormatDelimited }

// Parse decodes src, sniffs the delimiter and reads every record. Records
// may have any number of fields and quotes are handled leniently; a
// malformed record is logged and skipped.
func (p *Parser) Parse(ctx context.Context, src parser.Source) (*parser.Table, error) {
	cfg := institution.Lookup(src.Institution)
	text, err := institution.Decode(src.Data, cfg.CodePage)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{File: src.Name, Expected: cfg.CodePage + " text", Msg: err.Error()}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &parsererror.DataExtractionError{File: src.Name, Reason: "file is empty"}
	}

	delim := SniffDelimiter(text)
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	log := p.Logger().WithFields(logging.F(logging.FieldFile, src.Name), logging.F(logging.FieldFormat, string(parser.FormatDelimited)))

	var rows [][]parser.Cell
	for line := 1; ; line++ {
		if line%500 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.WithError(err).Debug("skipping malformed record", logging.F(logging.FieldRow, line))
			continue
		}
		row := make([]parser.Cell, len(record))
		for i, v := range record {
			row[i] = parser.TextCell(strings.TrimSpace(v))
		}
		rows = append(rows, row)
	}

	tbl, err := parser.BuildTable(src.Name, rows)
	if err != nil {
		return nil, err
	}
	log.Debug("read delimited file", logging.F(logging.FieldCount, len(tbl.Rows)))
	return tbl, nil
}

// SniffDelimiter picks the candidate delimiter that occurs most often in
// the first lines of text, preferring ',' on ties.
func SniffDelimiter(text string) rune {
	lines := strings.SplitN(text, "\n", parser.MaxHeaderScan+1)
	if len(lines) > parser.MaxHeaderScan {
		lines = lines[:parser.MaxHeaderScan]
	}
	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		n := 0
		for _, l := range lines {
			n += strings.Count(l, string(d))
		}
		if n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
