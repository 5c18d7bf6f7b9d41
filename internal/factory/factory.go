// Package factory picks the parser for a statement file.
package factory

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/bank-ingest/internal/csvparser"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/parser"
	"fjacquet/bank-ingest/internal/parsererror"
	"fjacquet/bank-ingest/internal/pdfparser"
	"fjacquet/bank-ingest/internal/xlsparser"
)

var pdfMagic = []byte("%PDF")

// AcceptedExtensions lists the file extensions the pipeline reads.
var AcceptedExtensions = []string{".csv", ".txt", ".tsv", ".xls", ".xlsx", ".pdf"}

// Factory holds one instance of each parser.
type Factory struct {
	csv *csvparser.Parser
	xls *xlsparser.Parser
	pdf *pdfparser.Parser
}

// New builds a Factory. A nil extractor uses the default PDF text extractor.
func New(logger logging.Logger, extractor pdfparser.TextExtractor) *Factory {
	return &Factory{
		csv: csvparser.New(logger),
		xls: xlsparser.New(logger),
		pdf: pdfparser.New(logger, extractor),
	}
}

// ForFile returns the parser for a file, by content signature first and
// extension second.
func (f *Factory) ForFile(name string, data []byte) (parser.Parser, error) {
	if p := f.byContent(data); p != nil {
		return p, nil
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", ".tsv":
		return f.csv, nil
	case ".xls", ".xlsx":
		return f.xls, nil
	case ".pdf":
		return f.pdf, nil
	}
	return nil, fmt.Errorf("%s: %w", name, parsererror.ErrUnsupportedFormat)
}

// ByFormat returns the parser for an explicit format.
func (f *Factory) ByFormat(format parser.Format) (parser.Parser, error) {
	switch format {
	case parser.FormatDelimited:
		return f.csv, nil
	case parser.FormatSpreadsheet:
		return f.xls, nil
	case parser.FormatPDF:
		return f.pdf, nil
	}
	return nil, fmt.Errorf("%s: %w", format, parsererror.ErrUnsupportedFormat)
}

func (f *Factory) byContent(data []byte) parser.Parser {
	if bytes.HasPrefix(data, pdfMagic) {
		return f.pdf
	}
	if _, ok := xlsparser.Sniff(data); ok {
		return f.xls
	}
	return nil
}

// IsAccepted reports whether name has an accepted extension.
func IsAccepted(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range AcceptedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
