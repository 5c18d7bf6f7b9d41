package store

import (
	"context"
	"database/sql"
	"fmt"

	"fjacquet/bank-ingest/internal/logging"
)

// SchemaVersion is the version the latest migration leaves the database at.
const SchemaVersion = 2

type migration struct {
	version     int
	description string
	statements  []string
}

var migrations = []migration{
	{
		version:     1,
		description: "initial schema",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS accounts (
				id TEXT PRIMARY KEY,
				institution TEXT NOT NULL,
				card_number TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				UNIQUE (institution, card_number)
			)`,
			`CREATE TABLE IF NOT EXISTS categories (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				alias_name TEXT NOT NULL DEFAULT '',
				position INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS category_keywords (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
				keyword TEXT NOT NULL,
				is_exact INTEGER NOT NULL DEFAULT 0,
				priority INTEGER NOT NULL DEFAULT 0,
				UNIQUE (category_id, keyword)
			)`,
			`CREATE TABLE IF NOT EXISTS transactions (
				id TEXT PRIMARY KEY,
				account_id TEXT NOT NULL REFERENCES accounts(id),
				date TEXT NOT NULL,
				value_date TEXT,
				description TEXT NOT NULL,
				amount TEXT NOT NULL,
				reference TEXT NOT NULL DEFAULT '',
				original_amount TEXT,
				original_currency TEXT NOT NULL DEFAULT '',
				category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
				is_auto_categorized INTEGER NOT NULL DEFAULT 0,
				is_recurring INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				UNIQUE (account_id, date, amount, description)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id)`,
			`CREATE INDEX IF NOT EXISTS idx_transactions_reference ON transactions(account_id, reference)`,
			`CREATE TABLE IF NOT EXISTS recurring_keywords (
				keyword TEXT PRIMARY KEY,
				created_at TEXT NOT NULL
			)`,
		},
	},
	{
		version:     2,
		description: "sign corrections and suggestion snoozes",
		statements: []string{
			`ALTER TABLE transactions ADD COLUMN correction_count INTEGER NOT NULL DEFAULT 0`,
			`CREATE TABLE IF NOT EXISTS suggestion_snoozes (
				key TEXT PRIMARY KEY,
				until TEXT NOT NULL
			)`,
		},
	},
}

// Migrate applies pending migrations, tracking the version in
// PRAGMA user_version.
func (s *Store) Migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := inTx(ctx, s.db, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d failed: %w", m.version, err)
				}
			}
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
				return fmt.Errorf("failed to update schema version: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		s.logger.Debug("applied migration",
			logging.F("version", m.version),
			logging.F("description", m.description))
	}

	var final int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&final); err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}
	if final != SchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", SchemaVersion, final)
	}
	return nil
}
