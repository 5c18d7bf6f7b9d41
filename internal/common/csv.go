// Package common holds the canonical CSV export shared by the parse and
// export commands.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"fjacquet/bank-ingest/internal/dateutils"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
)

// DefaultDelimiter separates exported CSV fields.
const DefaultDelimiter = ','

// TransactionRow is one exported CSV line. Amounts carry two decimals and
// dates are ISO formatted.
type TransactionRow struct {
	ID               string `csv:"id"`
	Date             string `csv:"date"`
	ValueDate        string `csv:"value_date"`
	Description      string `csv:"description"`
	Amount           string `csv:"amount"`
	Direction        string `csv:"direction"`
	Reference        string `csv:"reference"`
	OriginalAmount   string `csv:"original_amount"`
	OriginalCurrency string `csv:"original_currency"`
	Category         string `csv:"category"`
	Recurring        string `csv:"recurring"`
}

// RowFromParsed converts a parsed transaction.
func RowFromParsed(t models.ParsedTransaction) TransactionRow {
	row := TransactionRow{
		Date:             dateutils.ToISODate(t.Date),
		Description:      t.Description,
		Amount:           t.Amount.StringFixed(2),
		Direction:        string(t.Direction()),
		Reference:        t.Reference,
		OriginalCurrency: t.OriginalCurrency,
	}
	if t.ValueDate != nil {
		row.ValueDate = dateutils.ToISODate(*t.ValueDate)
	}
	if t.OriginalAmount != nil {
		row.OriginalAmount = t.OriginalAmount.StringFixed(2)
	}
	return row
}

// RowFromStored converts a stored transaction; categoryNames maps category
// IDs to display names.
func RowFromStored(t models.StoredTransaction, categoryNames map[string]string) TransactionRow {
	row := RowFromParsed(t.ParsedTransaction)
	row.ID = t.ID
	row.Category = categoryNames[t.CategoryID]
	if t.IsRecurring {
		row.Recurring = "yes"
	} else {
		row.Recurring = "no"
	}
	return row
}

// Writer exports transaction rows with a configurable delimiter.
type Writer struct {
	delimiter rune
	logger    logging.Logger
}

// NewWriter returns a Writer. A zero delimiter uses DefaultDelimiter.
func NewWriter(delimiter rune, logger logging.Logger) *Writer {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	return &Writer{delimiter: delimiter, logger: logging.OrDefault(logger)}
}

// Write marshals rows, header first, to w.
func (cw *Writer) Write(w io.Writer, rows []TransactionRow) error {
	if rows == nil {
		return fmt.Errorf("cannot write nil rows to CSV")
	}
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = cw.delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteFile writes rows to path, creating parent directories.
func (cw *Writer) WriteFile(path string, rows []TransactionRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			cw.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := cw.Write(file, rows); err != nil {
		return err
	}
	cw.logger.Info("Wrote transactions to CSV file",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(rows)))
	return nil
}

// WriteTransactionsToCSV writes parsed transactions to path.
func WriteTransactionsToCSV(txns []models.ParsedTransaction, path string, delimiter rune, logger logging.Logger) error {
	rows := make([]TransactionRow, len(txns))
	for i, t := range txns {
		rows[i] = RowFromParsed(t)
	}
	return NewWriter(delimiter, logger).WriteFile(path, rows)
}

// ReadTransactionRows reads a file written by Writer back into rows.
func ReadTransactionRows(r io.Reader, delimiter rune) ([]TransactionRow, error) {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	var rows []TransactionRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}
	return rows, nil
}
