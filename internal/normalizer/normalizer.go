// Package normalizer turns detected table rows into canonical transactions.
package normalizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/bank-ingest/internal/columns"
	"fjacquet/bank-ingest/internal/currencyutils"
	"fjacquet/bank-ingest/internal/dateutils"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/parser"
	"fjacquet/bank-ingest/internal/textutils"
)

const (
	// SkippedWarningRatio: above this share of skipped rows the result
	// carries a warning, since it usually means a column mismatch.
	SkippedWarningRatio = 0.5
	// MaxRowErrors caps the row messages kept in a result.
	MaxRowErrors = 20
)

// Normalizer converts rows using a column mapping.
type Normalizer struct {
	logger logging.Logger
}

// New returns a Normalizer.
func New(logger logging.Logger) *Normalizer {
	return &Normalizer{logger: logging.OrDefault(logger)}
}

type rowOutcome int

const (
	rowAccepted rowOutcome = iota
	rowSkipped
	rowFailed
)

// Normalize converts every data row of tbl. Rows that are not transactions
// are skipped; rows whose date or amount cannot be read are skipped and
// reported in Errors.
func (n *Normalizer) Normalize(tbl *parser.Table, m columns.Mapping, inst models.Institution) models.ParseResult {
	res := models.ParseResult{Institution: inst, RowCount: len(tbl.Rows)}
	log := n.logger.WithField(logging.FieldInstitution, string(inst))
	rowErrors := 0

	for i, cells := range tbl.Rows {
		row := i + 1
		tx, outcome, reason := n.normalizeRow(cells, m, inst)
		switch outcome {
		case rowAccepted:
			res.Transactions = append(res.Transactions, tx)
			continue
		case rowFailed:
			rowErrors++
			if rowErrors <= MaxRowErrors {
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: %s", row, reason))
			}
		}
		log.Debug("row skipped", logging.F(logging.FieldRow, row), logging.F(logging.FieldReason, reason))
	}
	if rowErrors > MaxRowErrors {
		res.Errors = append(res.Errors, fmt.Sprintf("%d more row errors not shown", rowErrors-MaxRowErrors))
	}

	res.SuccessCount = len(res.Transactions)
	res.SkippedRows = res.RowCount - res.SuccessCount
	if res.RowCount > 0 && float64(res.SkippedRows)/float64(res.RowCount) > SkippedWarningRatio {
		msg := fmt.Sprintf("%d of %d rows were skipped; the column mapping may not match this file", res.SkippedRows, res.RowCount)
		res.Warnings = append(res.Warnings, msg)
		log.Warn(msg, logging.F(logging.FieldCount, res.SkippedRows))
	}
	return res
}

func (n *Normalizer) normalizeRow(cells []parser.Cell, m columns.Mapping, inst models.Institution) (models.ParsedTransaction, rowOutcome, string) {
	var tx models.ParsedTransaction
	text := cellTexts(cells)

	rawDate := m.Value(text, columns.FieldDate)
	date, ok := cellDate(cells, m.Column(columns.FieldDate))
	if !ok {
		if rawDate == "" {
			return tx, rowSkipped, "no date"
		}
		parsed, err := dateutils.ParseDate(rawDate)
		if err != nil {
			if IsSummaryRow(m.Value(text, columns.FieldDescription)) {
				return tx, rowSkipped, "summary row"
			}
			return tx, rowFailed, fmt.Sprintf("unable to parse date '%s'", rawDate)
		}
		date = parsed
	}
	tx.Date = date

	tx.Description = textutils.CollapseSpaces(m.Value(text, columns.FieldDescription))
	if tx.Description == "" {
		return tx, rowSkipped, "empty description"
	}
	if IsSummaryRow(tx.Description) {
		return tx, rowSkipped, "summary row"
	}

	amount, fromGeneric, err := resolveAmount(text, m)
	if err != nil {
		return tx, rowFailed, err.Error()
	}
	flip := inst.IsCreditCard() && fromGeneric
	if flip {
		amount = amount.Neg()
	}
	if amount.IsZero() {
		return tx, rowSkipped, "zero amount"
	}
	if !inst.IsCreditCard() && amount.IsNegative() && IsCardBillDescription(tx.Description) {
		return tx, rowSkipped, "consolidated card bill"
	}
	tx.Amount = amount

	if vd, ok := cellDate(cells, m.Column(columns.FieldValueDate)); ok {
		tx.ValueDate = &vd
	} else if raw := m.Value(text, columns.FieldValueDate); raw != "" {
		if vd, err := dateutils.ParseDate(raw); err == nil {
			tx.ValueDate = &vd
		}
	}

	if ref := m.Value(text, columns.FieldReference); ref != "" && strings.Trim(ref, "0") != "" {
		tx.Reference = ref
	}

	if raw := m.Value(text, columns.FieldOriginalAmount); raw != "" {
		if oa, err := currencyutils.ParseAmount(raw); err == nil && !oa.IsZero() {
			if flip {
				oa = oa.Neg()
			}
			tx.OriginalAmount = &oa
			if tx.OriginalCurrency == "" {
				tx.OriginalCurrency = currencyutils.CurrencyOf(raw)
			}
		}
	}
	if raw := m.Value(text, columns.FieldOriginalCurrency); raw != "" {
		if code := currencyutils.CurrencyOf(raw); code != "" {
			tx.OriginalCurrency = code
		} else {
			tx.OriginalCurrency = raw
		}
	}

	return tx, rowAccepted, ""
}

// resolveAmount applies credit minus debit when both split columns exist,
// and the generic amount column otherwise or when both split cells are zero.
func resolveAmount(text []string, m columns.Mapping) (decimal.Decimal, bool, error) {
	if m.HasDebitCredit() {
		debit, err := currencyutils.ParseAmount(m.Value(text, columns.FieldDebit))
		if err != nil {
			return decimal.Zero, false, err
		}
		credit, err := currencyutils.ParseAmount(m.Value(text, columns.FieldCredit))
		if err != nil {
			return decimal.Zero, false, err
		}
		if !debit.IsZero() || !credit.IsZero() || !m.Has(columns.FieldAmount) {
			return credit.Sub(debit), false, nil
		}
	}
	amount, err := currencyutils.ParseAmount(m.Value(text, columns.FieldAmount))
	if err != nil {
		return decimal.Zero, true, err
	}
	return amount, true, nil
}

func cellTexts(cells []parser.Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Text
	}
	return out
}

func cellDate(cells []parser.Cell, col int) (time.Time, bool) {
	if col < 0 || col >= len(cells) || cells[col].Date == nil {
		return time.Time{}, false
	}
	return *cells[col].Date, true
}
