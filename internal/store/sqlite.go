// Package store persists accounts, transactions, categories and recurring
// state in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"fjacquet/bank-ingest/internal/logging"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

// Store owns the database handle and hands out the typed sub-stores.
type Store struct {
	db     *sql.DB
	path   string
	logger logging.Logger
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string, logger logging.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes writers and keeps an in-memory database
	// alive for the lifetime of the Store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, path: path, logger: logging.OrDefault(logger)}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

func (s *Store) Transactions() *TransactionStore { return &TransactionStore{db: s.db} }

func (s *Store) Accounts() *AccountStore { return &AccountStore{db: s.db, logger: s.logger} }

func (s *Store) Categories() *CategoryStore { return &CategoryStore{db: s.db} }

func (s *Store) RecurringKeywords() *RecurringKeywordStore { return &RecurringKeywordStore{db: s.db} }

func (s *Store) Snoozes() *SnoozeStore { return &SnoozeStore{db: s.db} }

// inTx runs fn in a transaction, rolling back on error.
func inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
