package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fjacquet/bank-ingest/internal/dateutils"
	"fjacquet/bank-ingest/internal/models"
)

const (
	dateLayout = "2006-01-02"
	// maxParams keeps IN lists under SQLite's bound-variable limit.
	maxParams = 500
)

// TransactionStore reads and writes stored transactions.
type TransactionStore struct {
	db *sql.DB
}

// amountKey is the canonical text of an amount in the uniqueness key.
func amountKey(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FindExisting loads the fields the duplicate resolver needs for every row
// of the account.
func (s *TransactionStore) FindExisting(ctx context.Context, accountID string) ([]models.ExistingTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, amount, description, reference, correction_count
		 FROM transactions WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing transactions: %w", err)
	}
	defer rows.Close()

	var out []models.ExistingTransaction
	for rows.Next() {
		var (
			e            models.ExistingTransaction
			date, amount string
		)
		if err := rows.Scan(&e.ID, &date, &amount, &e.Description, &e.Reference, &e.CorrectionCount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if e.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertBatch inserts txns in one transaction and returns how many rows
// were written. Rows colliding on (account, date, amount, description)
// are ignored. Empty IDs are generated.
func (s *TransactionStore) InsertBatch(ctx context.Context, txns []models.StoredTransaction) (int, error) {
	if len(txns) == 0 {
		return 0, nil
	}
	inserted := 0
	now := time.Now().UTC().Format(time.RFC3339)
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR IGNORE INTO transactions (
				id, account_id, date, value_date, description, amount, reference,
				original_amount, original_currency, category_id,
				is_auto_categorized, is_recurring, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i := range txns {
			t := &txns[i]
			if t.ID == "" {
				t.ID = uuid.NewString()
			}
			res, err := stmt.ExecContext(ctx,
				t.ID, t.AccountID, t.Date.Format(dateLayout), nullDate(t.ValueDate),
				t.Description, amountKey(t.Amount), t.Reference,
				nullAmount(t.OriginalAmount), t.OriginalCurrency, nullString(t.CategoryID),
				t.IsAutoCategorized, t.IsRecurring, now)
			if err != nil {
				return fmt.Errorf("failed to insert transaction: %w", err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// UpdateOne applies u to the row with id.
func (s *TransactionStore) UpdateOne(ctx context.Context, id string, u models.TransactionUpdate) error {
	n, err := s.UpdateMany(ctx, []string{id}, u)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateMany applies u to every row in ids and returns the rows changed.
func (s *TransactionStore) UpdateMany(ctx context.Context, ids []string, u models.TransactionUpdate) (int, error) {
	if len(ids) == 0 || u.IsEmpty() {
		return 0, nil
	}
	set, args := updateClause(u)
	changed := 0
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		for start := 0; start < len(ids); start += maxParams {
			end := start + maxParams
			if end > len(ids) {
				end = len(ids)
			}
			chunk := ids[start:end]
			query := "UPDATE transactions SET " + set + " WHERE id IN (" + placeholders(len(chunk)) + ")"
			chunkArgs := append(append([]interface{}{}, args...), stringArgs(chunk)...)
			res, err := tx.ExecContext(ctx, query, chunkArgs...)
			if err != nil {
				return fmt.Errorf("failed to update transactions: %w", err)
			}
			if n, err := res.RowsAffected(); err == nil {
				changed += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

func updateClause(u models.TransactionUpdate) (string, []interface{}) {
	var (
		cols []string
		args []interface{}
	)
	add := func(col string, v interface{}) {
		cols = append(cols, col+" = ?")
		args = append(args, v)
	}
	if u.Date != nil {
		add("date", u.Date.Format(dateLayout))
	}
	if u.ValueDate != nil {
		add("value_date", u.ValueDate.Format(dateLayout))
	} else if u.ClearValueDate {
		cols = append(cols, "value_date = NULL")
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Amount != nil {
		add("amount", amountKey(*u.Amount))
	}
	if u.CategoryID != nil {
		add("category_id", nullString(*u.CategoryID))
	}
	if u.IsAutoCategorized != nil {
		add("is_auto_categorized", *u.IsAutoCategorized)
	}
	if u.IsRecurring != nil {
		add("is_recurring", *u.IsRecurring)
	}
	if u.IncrementCorrections {
		cols = append(cols, "correction_count = correction_count + 1")
	}
	return strings.Join(cols, ", "), args
}

const selectColumns = `id, account_id, date, value_date, description, amount, reference,
	original_amount, original_currency, category_id, is_auto_categorized,
	is_recurring, correction_count, created_at`

// ListTransactions returns the rows matching filter ordered by date.
func (s *TransactionStore) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.StoredTransaction, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, filter.AccountID)
	}
	if len(filter.IDs) > 0 {
		where = append(where, "id IN ("+placeholders(len(filter.IDs))+")")
		args = append(args, stringArgs(filter.IDs)...)
	}
	query := "SELECT " + selectColumns + " FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []models.StoredTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTransaction returns one row by id.
func (s *TransactionStore) GetTransaction(ctx context.Context, id string) (models.StoredTransaction, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return t, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return t, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(sc scanner) (models.StoredTransaction, error) {
	var (
		t                             models.StoredTransaction
		date, amount, created         string
		valueDate, original, category sql.NullString
	)
	err := sc.Scan(&t.ID, &t.AccountID, &date, &valueDate, &t.Description, &amount, &t.Reference,
		&original, &t.OriginalCurrency, &category, &t.IsAutoCategorized,
		&t.IsRecurring, &t.CorrectionCount, &created)
	if err == sql.ErrNoRows {
		return t, err
	}
	if err != nil {
		return t, fmt.Errorf("failed to scan transaction: %w", err)
	}
	if t.Date, err = time.Parse(dateLayout, date); err != nil {
		return t, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return t, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	if valueDate.Valid {
		if vd, err := time.Parse(dateLayout, valueDate.String); err == nil {
			t.ValueDate = &vd
		}
	}
	if original.Valid {
		if oa, err := decimal.NewFromString(original.String); err == nil {
			t.OriginalAmount = &oa
		}
	}
	t.CategoryID = category.String
	t.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return t, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return dateutils.ToISODate(*t)
}

func nullAmount(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}
