package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"fjacquet/bank-ingest/internal/models"
)

// RecurringKeywordStore holds the keywords that mark imports as recurring.
type RecurringKeywordStore struct {
	db *sql.DB
}

func (s *RecurringKeywordStore) List(ctx context.Context) ([]models.RecurringKeyword, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT keyword, created_at FROM recurring_keywords ORDER BY keyword`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring keywords: %w", err)
	}
	defer rows.Close()

	var out []models.RecurringKeyword
	for rows.Next() {
		var (
			k       models.RecurringKeyword
			created string
		)
		if err := rows.Scan(&k.Keyword, &created); err != nil {
			return nil, fmt.Errorf("failed to scan recurring keyword: %w", err)
		}
		k.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *RecurringKeywordStore) Upsert(ctx context.Context, keyword string) error {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return fmt.Errorf("keyword is empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recurring_keywords (keyword, created_at) VALUES (?, ?)
		 ON CONFLICT(keyword) DO NOTHING`,
		keyword, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save recurring keyword: %w", err)
	}
	return nil
}

func (s *RecurringKeywordStore) Delete(ctx context.Context, keyword string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM recurring_keywords WHERE keyword = ?`,
		strings.ToLower(strings.TrimSpace(keyword)))
	if err != nil {
		return fmt.Errorf("failed to delete recurring keyword: %w", err)
	}
	return nil
}

// SnoozeStore keeps dismissed suggestion keys with their expiry.
type SnoozeStore struct {
	db *sql.DB
}

// Get returns the expiry of key, or nil when it is not snoozed.
func (s *SnoozeStore) Get(ctx context.Context, key string) (*time.Time, error) {
	var until string
	err := s.db.QueryRowContext(ctx, `SELECT until FROM suggestion_snoozes WHERE key = ?`, key).Scan(&until)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snooze: %w", err)
	}
	t, err := time.Parse(time.RFC3339, until)
	if err != nil {
		return nil, fmt.Errorf("invalid snooze expiry %q: %w", until, err)
	}
	return &t, nil
}

// Set snoozes key until the given time; nil clears it.
func (s *SnoozeStore) Set(ctx context.Context, key string, until *time.Time) error {
	var err error
	if until == nil {
		_, err = s.db.ExecContext(ctx, `DELETE FROM suggestion_snoozes WHERE key = ?`, key)
	} else {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO suggestion_snoozes (key, until) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET until = excluded.until`,
			key, until.UTC().Format(time.RFC3339))
	}
	if err != nil {
		return fmt.Errorf("failed to save snooze: %w", err)
	}
	return nil
}

// ActiveSnoozes returns the keys snoozed past now.
func (s *SnoozeStore) ActiveSnoozes(ctx context.Context, now time.Time) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, until FROM suggestion_snoozes`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snoozes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var key, until string
		if err := rows.Scan(&key, &until); err != nil {
			return nil, fmt.Errorf("failed to scan snooze: %w", err)
		}
		t, err := time.Parse(time.RFC3339, until)
		if err != nil || !t.After(now) {
			continue
		}
		out[key] = t
	}
	return out, rows.Err()
}
