package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
)

// AccountStore manages statement sources.
type AccountStore struct {
	db     *sql.DB
	logger logging.Logger
}

// FindOrCreate returns the account for (institution, cardNumber).
//
// A known card number reuses its account, or claims the institution's
// account that was created before any card number was known. An unknown
// card number reuses the blank account, or the institution's only account.
func (s *AccountStore) FindOrCreate(ctx context.Context, inst models.Institution, cardNumber string) (models.Account, error) {
	var acc models.Account
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		accounts, err := accountsOf(ctx, tx, inst)
		if err != nil {
			return err
		}

		var blank *models.Account
		for i := range accounts {
			if accounts[i].CardNumber == cardNumber {
				acc = accounts[i]
				return nil
			}
			if accounts[i].CardNumber == "" {
				blank = &accounts[i]
			}
		}

		switch {
		case cardNumber != "" && blank != nil:
			if _, err := tx.ExecContext(ctx, `UPDATE accounts SET card_number = ? WHERE id = ?`, cardNumber, blank.ID); err != nil {
				return fmt.Errorf("failed to set card number: %w", err)
			}
			blank.CardNumber = cardNumber
			acc = *blank
			s.logger.Info("account card number learned",
				logging.F(logging.FieldAccount, acc.ID),
				logging.F(logging.FieldInstitution, string(inst)))
			return nil
		case cardNumber == "" && len(accounts) == 1:
			acc = accounts[0]
			return nil
		}

		acc = models.Account{
			ID:          uuid.NewString(),
			Institution: inst,
			CardNumber:  cardNumber,
			CreatedAt:   time.Now().UTC().Truncate(time.Second),
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO accounts (id, institution, card_number, created_at) VALUES (?, ?, ?, ?)`,
			acc.ID, string(acc.Institution), acc.CardNumber, acc.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	})
	return acc, err
}

// List returns every account.
func (s *AccountStore) List(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, institution, card_number, created_at FROM accounts ORDER BY institution, card_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func accountsOf(ctx context.Context, tx *sql.Tx, inst models.Institution) ([]models.Account, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, institution, card_number, created_at FROM accounts WHERE institution = ? ORDER BY created_at, id`,
		string(inst))
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func scanAccounts(rows *sql.Rows) ([]models.Account, error) {
	var out []models.Account
	for rows.Next() {
		var (
			a             models.Account
			inst, created string
		)
		if err := rows.Scan(&a.ID, &inst, &a.CardNumber, &created); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Institution = models.Institution(inst)
		a.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, a)
	}
	return out, rows.Err()
}
