// Package dedup decides which incoming transactions are new for an account
// and which stored rows need their sign repaired.
package dedup

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fjacquet/bank-ingest/internal/dateutils"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
)

// MaxCorrectionsPerRow bounds how often one stored row may be rewritten by
// sign repair. A row that keeps flipping points at a parser problem, not a
// historical one.
const MaxCorrectionsPerRow = 3

// Correction is an in-place repair of a stored row whose sign disagrees
// with a fresh import of the same reference.
type Correction struct {
	ExistingID string
	Incoming   models.ParsedTransaction
	Update     models.TransactionUpdate
}

// Plan is the outcome of resolving one file against an account.
type Plan struct {
	Accepted    []models.ParsedTransaction
	Corrections []Correction
	Duplicates  int
	Warnings    []string
}

// Resolver classifies incoming transactions.
type Resolver struct {
	logger logging.Logger
}

// NewResolver returns a Resolver.
func NewResolver(logger logging.Logger) *Resolver {
	return &Resolver{logger: logging.OrDefault(logger)}
}

// Fingerprint is the content identity of a transaction: its day, its amount
// to the cent and its description.
func Fingerprint(date string, amount decimal.Decimal, description string) string {
	return date + "|" + amount.StringFixed(2) + "|" + description
}

func fingerprintOf(t models.ParsedTransaction) string {
	return Fingerprint(dateutils.ToISODate(t.Date), t.Amount, t.Description)
}

// Resolve walks incoming in order against the account's existing rows.
// Resolving the same input twice against the stored result of the first
// pass yields no accepted rows and no corrections.
func (r *Resolver) Resolve(existing []models.ExistingTransaction, incoming []models.ParsedTransaction) Plan {
	var plan Plan

	byReference := make(map[string]models.ExistingTransaction)
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, e := range existing {
		if e.Reference != "" {
			byReference[e.Reference] = e
		}
		seen[Fingerprint(dateutils.ToISODate(e.Date), e.Amount, e.Description)] = struct{}{}
	}
	fileReferences := make(map[string]struct{})
	corrected := make(map[string]struct{})

	for _, tx := range incoming {
		if tx.Reference != "" {
			if _, dup := fileReferences[tx.Reference]; dup {
				plan.Duplicates++
				continue
			}
			fileReferences[tx.Reference] = struct{}{}

			if e, ok := byReference[tx.Reference]; ok {
				plan.Duplicates++
				if c, ok := r.correction(e, tx, corrected, &plan); ok {
					plan.Corrections = append(plan.Corrections, c)
					corrected[e.ID] = struct{}{}
					seen[fingerprintOf(tx)] = struct{}{}
				}
				continue
			}
		}

		fp := fingerprintOf(tx)
		if _, dup := seen[fp]; dup {
			plan.Duplicates++
			continue
		}
		seen[fp] = struct{}{}
		plan.Accepted = append(plan.Accepted, tx)
	}
	return plan
}

// correction returns the repair for e when tx is the same reference with
// the same magnitude and the opposite sign.
func (r *Resolver) correction(e models.ExistingTransaction, tx models.ParsedTransaction, corrected map[string]struct{}, plan *Plan) (Correction, bool) {
	if !e.Amount.Abs().Equal(tx.Amount.Abs()) || e.Amount.Sign() == tx.Amount.Sign() {
		return Correction{}, false
	}
	if _, done := corrected[e.ID]; done {
		return Correction{}, false
	}
	if e.CorrectionCount >= MaxCorrectionsPerRow {
		msg := fmt.Sprintf("transaction %s was already corrected %d times; leaving it unchanged", e.ID, e.CorrectionCount)
		plan.Warnings = append(plan.Warnings, msg)
		r.logger.Warn("sign correction limit reached",
			logging.F(logging.FieldTransaction, e.ID),
			logging.F(logging.FieldReference, e.Reference),
			logging.F(logging.FieldCount, e.CorrectionCount))
		return Correction{}, false
	}

	r.logger.Info("queueing sign correction",
		logging.F(logging.FieldTransaction, e.ID),
		logging.F(logging.FieldReference, e.Reference))
	return Correction{ExistingID: e.ID, Incoming: tx, Update: RetriageUpdate(tx)}, true
}

// RetriageUpdate rewrites a stored row with tx's values and clears its
// categorization so it is triaged again.
func RetriageUpdate(tx models.ParsedTransaction) models.TransactionUpdate {
	date := tx.Date
	amount := tx.Amount
	description := tx.Description
	noCategory := ""
	no := false
	u := models.TransactionUpdate{
		Date:                 &date,
		Description:          &description,
		Amount:               &amount,
		CategoryID:           &noCategory,
		IsAutoCategorized:    &no,
		IsRecurring:          &no,
		IncrementCorrections: true,
	}
	if tx.ValueDate != nil {
		vd := *tx.ValueDate
		u.ValueDate = &vd
	} else {
		u.ClearValueDate = true
	}
	return u
}
