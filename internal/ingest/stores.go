package ingest

import (
	"context"

	"fjacquet/bank-ingest/internal/models"
)

// TransactionStore persists transactions.
type TransactionStore interface {
	FindExisting(ctx context.Context, accountID string) ([]models.ExistingTransaction, error)
	InsertBatch(ctx context.Context, txns []models.StoredTransaction) (int, error)
	UpdateOne(ctx context.Context, id string, update models.TransactionUpdate) error
	UpdateMany(ctx context.Context, ids []string, update models.TransactionUpdate) (int, error)
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.StoredTransaction, error)
	GetTransaction(ctx context.Context, id string) (models.StoredTransaction, error)
}

// AccountStore resolves the account a statement belongs to.
type AccountStore interface {
	FindOrCreate(ctx context.Context, inst models.Institution, cardNumber string) (models.Account, error)
}

// CategoryStore lists categories and learns keywords.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	AddKeyword(ctx context.Context, categoryID, keyword string) error
}

// RecurringKeywordStore lists the keywords that flag imports as recurring.
type RecurringKeywordStore interface {
	List(ctx context.Context) ([]models.RecurringKeyword, error)
}
