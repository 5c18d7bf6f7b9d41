package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the expense/income side of a transaction, derived from the
// amount sign.
type Direction string

const (
	DirectionExpense Direction = "expense"
	DirectionIncome  Direction = "income"
)

// DirectionOf returns the direction for a signed amount. Zero is treated as
// income; zero-amount rows never reach storage.
func DirectionOf(amount decimal.Decimal) Direction {
	if amount.IsNegative() {
		return DirectionExpense
	}
	return DirectionIncome
}

// ParsedTransaction is the canonical output of a statement parser. Amount is
// negative for expenses and positive for income.
type ParsedTransaction struct {
	Date             time.Time        `json:"date"`
	ValueDate        *time.Time       `json:"value_date,omitempty"`
	Description      string           `json:"description"`
	Amount           decimal.Decimal  `json:"amount"`
	Reference        string           `json:"reference,omitempty"`
	OriginalAmount   *decimal.Decimal `json:"original_amount,omitempty"`
	OriginalCurrency string           `json:"original_currency,omitempty"`
}

// Direction returns the expense/income side of t.
func (t ParsedTransaction) Direction() Direction {
	return DirectionOf(t.Amount)
}

// StoredTransaction is a persisted ParsedTransaction bound to an account.
type StoredTransaction struct {
	ParsedTransaction
	ID                string    `json:"id"`
	AccountID         string    `json:"account_id"`
	CategoryID        string    `json:"category_id,omitempty"`
	IsAutoCategorized bool      `json:"is_auto_categorized"`
	IsRecurring       bool      `json:"is_recurring"`
	CorrectionCount   int       `json:"correction_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// ExistingTransaction is the slice of a stored row the duplicate resolver
// needs.
type ExistingTransaction struct {
	ID              string
	Date            time.Time
	Amount          decimal.Decimal
	Description     string
	Reference       string
	CorrectionCount int
}

// TransactionUpdate lists the fields to change on stored rows. Nil pointers
// leave the column untouched; CategoryID pointing at "" clears the category.
type TransactionUpdate struct {
	Date                 *time.Time
	ValueDate            *time.Time
	ClearValueDate       bool
	Description          *string
	Amount               *decimal.Decimal
	CategoryID           *string
	IsAutoCategorized    *bool
	IsRecurring          *bool
	IncrementCorrections bool
}

// IsEmpty reports whether u changes nothing.
func (u TransactionUpdate) IsEmpty() bool {
	return u.Date == nil && u.ValueDate == nil && !u.ClearValueDate &&
		u.Description == nil && u.Amount == nil && u.CategoryID == nil &&
		u.IsAutoCategorized == nil && u.IsRecurring == nil && !u.IncrementCorrections
}

// TransactionFilter selects stored rows. Empty fields do not constrain.
type TransactionFilter struct {
	IDs       []string
	AccountID string
}

// Account is one statement source: a bank account or a single card.
type Account struct {
	ID          string      `json:"id"`
	Institution Institution `json:"institution"`
	CardNumber  string      `json:"card_number,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
