// Package categorizer assigns categories to transaction descriptions using
// an AI classifier, a curated merchant table and learned keywords.
package categorizer

import "fjacquet/bank-ingest/internal/models"

// Snapshot is the category list as it was when a categorization run
// started. It is read-only for the duration of the run.
type Snapshot struct {
	categories []models.Category
	byID       map[string]int
}

// NewSnapshot indexes categories, keeping their order.
func NewSnapshot(categories []models.Category) *Snapshot {
	s := &Snapshot{categories: categories, byID: make(map[string]int, len(categories))}
	for i, c := range categories {
		s.byID[c.ID] = i
	}
	return s
}

// Categories returns the categories in store order.
func (s *Snapshot) Categories() []models.Category {
	if s == nil {
		return nil
	}
	return s.categories
}

// ByID returns the category with id.
func (s *Snapshot) ByID(id string) (models.Category, bool) {
	if s == nil {
		return models.Category{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return models.Category{}, false
	}
	return s.categories[i], true
}

// Names returns the category names, the labels a classifier may answer with.
func (s *Snapshot) Names() []string {
	out := make([]string, 0, len(s.Categories()))
	for _, c := range s.Categories() {
		out = append(out, c.Name)
	}
	return out
}
