package recurring

import (
	"context"
	"fmt"
	"time"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
)

// TransactionStore is the slice of the transaction store the service uses.
type TransactionStore interface {
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.StoredTransaction, error)
	UpdateMany(ctx context.Context, ids []string, update models.TransactionUpdate) (int, error)
}

// KeywordStore holds the recurring keywords applied at import time.
type KeywordStore interface {
	Upsert(ctx context.Context, keyword string) error
	Delete(ctx context.Context, keyword string) error
}

// SnoozeStore persists dismissed suggestion keys until they expire.
type SnoozeStore interface {
	ActiveSnoozes(ctx context.Context, now time.Time) (map[string]time.Time, error)
	Set(ctx context.Context, key string, until *time.Time) error
}

// ErrSuggestionNotFound is returned when a key does not match a current
// suggestion.
var ErrSuggestionNotFound = fmt.Errorf("suggestion not found")

// Service lists suggestions and applies or dismisses them.
type Service struct {
	engine   *Engine
	txns     TransactionStore
	keywords KeywordStore
	snoozes  SnoozeStore
	snooze   time.Duration
	logger   logging.Logger
}

// NewService wires the engine to its stores. A zero snooze uses
// DefaultSnooze.
func NewService(engine *Engine, txns TransactionStore, keywords KeywordStore, snoozes SnoozeStore, snooze time.Duration, logger logging.Logger) *Service {
	if snooze <= 0 {
		snooze = DefaultSnooze
	}
	return &Service{
		engine:   engine,
		txns:     txns,
		keywords: keywords,
		snoozes:  snoozes,
		snooze:   snooze,
		logger:   logging.OrDefault(logger),
	}
}

// List evaluates the account's history; an empty accountID covers every
// account.
func (s *Service) List(ctx context.Context, accountID string, now time.Time) ([]Suggestion, error) {
	txns, err := s.txns.ListTransactions(ctx, models.TransactionFilter{AccountID: accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	snoozed, err := s.snoozes.ActiveSnoozes(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load snoozes: %w", err)
	}
	return s.engine.Suggest(txns, snoozed, now), nil
}

// Accept applies the suggestion with key: it sets or clears the recurring
// flag on its transactions and records or forgets the signature as a
// recurring keyword.
func (s *Service) Accept(ctx context.Context, accountID, key string, now time.Time) (Suggestion, int, error) {
	sug, err := s.find(ctx, accountID, key, now)
	if err != nil {
		return Suggestion{}, 0, err
	}

	flag := sug.Action == ActionAdd
	n, err := s.txns.UpdateMany(ctx, sug.TransactionIDs, models.TransactionUpdate{IsRecurring: &flag})
	if err != nil {
		return sug, 0, fmt.Errorf("failed to update transactions: %w", err)
	}
	if flag {
		err = s.keywords.Upsert(ctx, sug.Signature)
	} else {
		err = s.keywords.Delete(ctx, sug.Signature)
	}
	if err != nil {
		return sug, n, fmt.Errorf("failed to update recurring keyword: %w", err)
	}

	s.logger.Info("recurring suggestion accepted",
		logging.F(logging.FieldSuggestion, sug.Key),
		logging.F(logging.FieldCount, n))
	return sug, n, nil
}

// Dismiss snoozes key until now plus the configured snooze.
func (s *Service) Dismiss(ctx context.Context, key string, now time.Time) (time.Time, error) {
	until := now.Add(s.snooze)
	if err := s.snoozes.Set(ctx, key, &until); err != nil {
		return time.Time{}, fmt.Errorf("failed to snooze suggestion: %w", err)
	}
	s.logger.Info("recurring suggestion dismissed",
		logging.F(logging.FieldSuggestion, key),
		logging.F("until", until))
	return until, nil
}

func (s *Service) find(ctx context.Context, accountID, key string, now time.Time) (Suggestion, error) {
	txns, err := s.txns.ListTransactions(ctx, models.TransactionFilter{AccountID: accountID})
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to load transactions: %w", err)
	}
	for _, sug := range s.engine.All(txns, nil, now) {
		if sug.Key == key {
			return sug, nil
		}
	}
	return Suggestion{}, fmt.Errorf("%w: %s", ErrSuggestionNotFound, key)
}
