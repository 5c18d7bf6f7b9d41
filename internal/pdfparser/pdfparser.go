// Package pdfparser reads PDF statements whose text layout is known.
package pdfparser

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"fjacquet/bank-ingest/internal/institution"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/parser"
	"fjacquet/bank-ingest/internal/parsererror"
	"fjacquet/bank-ingest/internal/textutils"
)

// Canonical headers of the table produced from PDF rows.
const (
	HeaderDate        = "date"
	HeaderDescription = "description"
	HeaderAmount      = "amount"
	HeaderBalance     = "balance"
)

// genericReject is shown when the issuer has no supported PDF layout.
const genericReject = "פורמט PDF זה אינו נתמך. יש לייצא את התנועות כקובץ Excel או CSV"

// Parser reads PDF statements through a TextExtractor.
type Parser struct {
	parser.BaseParser
	extractor TextExtractor
}

// New returns a PDF parser. A nil extractor uses the ledongthuc/pdf one.
func New(logger logging.Logger, extractor TextExtractor) *Parser {
	if extractor == nil {
		extractor = NewLibraryExtractor()
	}
	return &Parser{BaseParser: parser.NewBaseParser(logger), extractor: extractor}
}

func (p *Parser) Format() parser.Format { return parser.FormatPDF }

// Parse extracts the text, checks it belongs to a supported issuer and
// turns every matching row into a table row with signed amounts.
func (p *Parser) Parse(ctx context.Context, src parser.Source) (*parser.Table, error) {
	text, err := p.extractor.ExtractText(ctx, src.Data)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{File: src.Name, Expected: "PDF statement", Msg: err.Error(), LocalizedMsg: genericReject}
	}

	inst := src.Institution
	if inst == "" || inst == models.InstitutionOther {
		inst = institution.DetectText(text, src.Name)
	}
	layout, ok := LayoutFor(inst)
	if !ok {
		return nil, &parsererror.InvalidFormatError{File: src.Name, Expected: "supported PDF statement", Msg: fmt.Sprintf("no PDF layout for %s", inst), LocalizedMsg: genericReject}
	}
	if !hasMarker(text, layout.Markers) {
		return nil, &parsererror.InvalidFormatError{File: src.Name, Expected: string(inst) + " PDF statement", Msg: "issuer markers not found", LocalizedMsg: layout.RejectMessage}
	}

	tbl := &parser.Table{
		Headers: []string{HeaderDate, HeaderDescription, HeaderAmount, HeaderBalance},
		Meta: parser.Metadata{
			Institution:   inst,
			AccountNumber: firstGroup(layout.AccountNumber, text),
			HolderName:    strings.TrimSpace(firstGroup(layout.HolderName, text)),
		},
	}

	log := p.Logger().WithFields(logging.F(logging.FieldFile, src.Name), logging.F(logging.FieldInstitution, string(inst)))
	seen := make(map[string]struct{})
	for n, line := range strings.Split(text, "\n") {
		line = textutils.CollapseSpaces(line)
		if line == "" || isSkipped(line, layout.SkipKeywords) {
			continue
		}
		m := layout.Row.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		date, desc, amount, balance, kind := m[1], strings.TrimSpace(m[2]), strings.TrimPrefix(m[3], "-"), m[4], m[5]
		if kind == layout.DebitMarker {
			amount = "-" + amount
		}

		key := date + "|" + desc + "|" + amount
		if _, dup := seen[key]; dup {
			log.Debug("dropping row repeated in document", logging.F(logging.FieldRow, n+1))
			continue
		}
		seen[key] = struct{}{}

		tbl.Rows = append(tbl.Rows, []parser.Cell{
			parser.TextCell(date), parser.TextCell(desc), parser.TextCell(amount), parser.TextCell(balance),
		})
	}

	if len(tbl.Rows) == 0 {
		return nil, &parsererror.DataExtractionError{File: src.Name, Reason: "no transaction rows matched the statement layout"}
	}
	log.Debug("read PDF statement", logging.F(logging.FieldCount, len(tbl.Rows)))
	return tbl, nil
}

func hasMarker(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

func isSkipped(line string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(line, k) {
			return true
		}
	}
	return false
}

func firstGroup(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	return ""
}
