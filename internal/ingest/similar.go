package ingest

import (
	"context"
	"fmt"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/merchant"
	"fjacquet/bank-ingest/internal/models"
)

// SimilarResult reports what ApplyToSimilar changed.
type SimilarResult struct {
	Signature string `json:"signature,omitempty"`
	Matched   int    `json:"matched"`
	Updated   int    `json:"updated"`
	Skipped   bool   `json:"skipped"`
	Reason    string `json:"reason,omitempty"`
}

// ApplyToSimilar sets categoryID on the transaction txID, then on every
// other transaction of the same account with the same merchant signature.
// Propagation is skipped, with a reason, when the signature is empty or
// matches more rows than the configured limit.
func (s *Service) ApplyToSimilar(ctx context.Context, txID, categoryID string) (SimilarResult, error) {
	var res SimilarResult

	tx, err := s.txns.GetTransaction(ctx, txID)
	if err != nil {
		return res, err
	}
	if err := s.ensureCategory(ctx, categoryID); err != nil {
		return res, err
	}

	manual := false
	update := models.TransactionUpdate{CategoryID: &categoryID, IsAutoCategorized: &manual}
	if err := s.txns.UpdateOne(ctx, txID, update); err != nil {
		return res, fmt.Errorf("failed to update transaction: %w", err)
	}
	res.Updated = 1

	res.Signature = merchant.Signature(tx.Description)
	if res.Signature == "" {
		res.Skipped = true
		res.Reason = "description has no merchant signature"
		return res, nil
	}

	all, err := s.txns.ListTransactions(ctx, models.TransactionFilter{AccountID: tx.AccountID})
	if err != nil {
		return res, fmt.Errorf("failed to load account transactions: %w", err)
	}
	var ids []string
	for _, t := range all {
		if t.ID != txID && merchant.Signature(t.Description) == res.Signature {
			ids = append(ids, t.ID)
		}
	}
	res.Matched = len(ids)

	log := s.logger.WithFields(
		logging.F(logging.FieldTransaction, txID),
		logging.F(logging.FieldSignature, res.Signature))
	if len(ids) > s.maxPropagation {
		res.Skipped = true
		res.Reason = fmt.Sprintf("%d similar transactions exceed the propagation limit of %d", len(ids), s.maxPropagation)
		log.Warn("propagation skipped", logging.F(logging.FieldCount, len(ids)))
		return res, nil
	}

	n, err := s.txns.UpdateMany(ctx, ids, update)
	if err != nil {
		return res, fmt.Errorf("failed to update similar transactions: %w", err)
	}
	res.Updated += n

	if s.learn && s.categories != nil {
		if err := s.categories.AddKeyword(ctx, categoryID, res.Signature); err != nil {
			log.WithError(err).Warn("failed to learn keyword")
		}
	}
	log.Info("category applied to similar transactions", logging.F(logging.FieldCount, n))
	return res, nil
}

func (s *Service) ensureCategory(ctx context.Context, categoryID string) error {
	if s.categories == nil {
		return nil
	}
	cats, err := s.categories.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	for _, c := range cats {
		if c.ID == categoryID {
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", categoryID)
}
