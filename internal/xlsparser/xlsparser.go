// Package xlsparser reads spreadsheet statement exports: .xlsx workbooks,
// legacy .xls workbooks, and the HTML tables some banks save with an .xls
// extension.
package xlsparser

import (
	"bytes"
	"context"
	"fmt"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/parser"
	"fjacquet/bank-ingest/internal/parsererror"
)

// Kind is the physical container of a spreadsheet file.
type Kind string

const (
	KindXLSX Kind = "xlsx"
	KindXLS  Kind = "xls"
	KindHTML Kind = "html"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Sniff identifies the container from the leading bytes.
func Sniff(data []byte) (Kind, bool) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return KindXLSX, true
	case bytes.HasPrefix(data, oleMagic):
		return KindXLS, true
	case looksLikeHTML(data):
		return KindHTML, true
	}
	return "", false
}

// Parser reads the first sheet that contains a statement table.
type Parser struct {
	parser.BaseParser
}

// New returns a spreadsheet parser.
func New(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(logger)}
}

func (p *Parser) Format() parser.Format { return parser.FormatSpreadsheet }

// Parse reads src. Native date cells are kept as dates.
func (p *Parser) Parse(ctx context.Context, src parser.Source) (*parser.Table, error) {
	kind, ok := Sniff(src.Data)
	if !ok {
		return nil, &parsererror.InvalidFormatError{File: src.Name, Expected: "xls, xlsx or html spreadsheet", Msg: "unrecognized spreadsheet container"}
	}

	var (
		sheets [][][]parser.Cell
		err    error
	)
	switch kind {
	case KindXLSX:
		sheets, err = readXLSX(ctx, src.Data)
	case KindXLS:
		sheets, err = readXLS(ctx, src.Data)
	case KindHTML:
		sheets, err = readHTML(ctx, src.Data)
	}
	if err != nil {
		return nil, &parsererror.InvalidFormatError{File: src.Name, Expected: string(kind) + " spreadsheet", Msg: err.Error()}
	}

	log := p.Logger().WithFields(logging.F(logging.FieldFile, src.Name), logging.F(logging.FieldFormat, string(kind)))

	var lastErr error
	for i, rows := range sheets {
		tbl, err := parser.BuildTable(src.Name, rows)
		if err != nil {
			log.Debug("sheet has no statement table", logging.F("sheet", i), logging.F(logging.FieldReason, err.Error()))
			lastErr = err
			continue
		}
		log.Debug("read spreadsheet", logging.F("sheet", i), logging.F(logging.FieldCount, len(tbl.Rows)))
		return tbl, nil
	}
	if lastErr == nil {
		lastErr = &parsererror.DataExtractionError{File: src.Name, Reason: "workbook has no sheets"}
	}
	return nil, fmt.Errorf("%s: %w", src.Name, lastErr)
}
