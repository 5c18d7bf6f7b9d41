package categorizer

import (
	"strings"

	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/textutils"
)

// KeywordCategorizer matches descriptions against learned keywords. The
// first category whose keyword is contained in the description wins, in
// snapshot order. Short keywords must match whole words.
type KeywordCategorizer struct{}

// NewKeywordCategorizer returns a KeywordCategorizer.
func NewKeywordCategorizer() *KeywordCategorizer {
	return &KeywordCategorizer{}
}

// Name identifies the strategy in logs.
func (k *KeywordCategorizer) Name() string { return "keyword" }

// Match returns the first category with a keyword matching description.
func (k *KeywordCategorizer) Match(description string, snap *Snapshot) (models.Category, bool) {
	lower := strings.ToLower(strings.TrimSpace(description))
	if lower == "" {
		return models.Category{}, false
	}
	normalized := textutils.Normalize(description)

	for _, c := range snap.Categories() {
		for _, kw := range c.Keywords {
			if keywordMatches(kw, lower, normalized) {
				return c, true
			}
		}
	}
	return models.Category{}, false
}

func keywordMatches(kw models.CategoryKeyword, lower, normalized string) bool {
	key := strings.ToLower(strings.TrimSpace(kw.Keyword))
	if key == "" {
		return false
	}
	if kw.IsExact {
		return lower == key || normalized == textutils.Normalize(key)
	}
	return textutils.ContainsTerm(normalized, key)
}
