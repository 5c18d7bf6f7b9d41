package categorizer

import (
	"strings"

	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/textutils"
)

const (
	// CategoryMatchThreshold is the minimum token overlap for a free-text
	// label to resolve to a category.
	CategoryMatchThreshold = 0.4
	// DescriptionMatchThreshold is the minimum token overlap for a reply key
	// to resolve to a requested description.
	DescriptionMatchThreshold = 0.6
)

// ResolveCategory maps a free-text label to a category: exact name or alias,
// then normalized equality, then normalized containment in either direction,
// then the best token overlap at or above CategoryMatchThreshold.
func ResolveCategory(label string, snap *Snapshot) (models.Category, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.Category{}, false
	}
	cats := snap.Categories()

	for _, c := range cats {
		if strings.EqualFold(c.Name, label) || (c.AliasName != "" && strings.EqualFold(c.AliasName, label)) {
			return c, true
		}
	}

	norm := textutils.Normalize(label)
	if norm == "" {
		return models.Category{}, false
	}
	for _, c := range cats {
		if textutils.Normalize(c.Name) == norm || (c.AliasName != "" && textutils.Normalize(c.AliasName) == norm) {
			return c, true
		}
	}

	for _, c := range cats {
		for _, candidate := range []string{c.Name, c.AliasName} {
			cn := textutils.Normalize(candidate)
			if cn != "" && (strings.Contains(cn, norm) || strings.Contains(norm, cn)) {
				return c, true
			}
		}
	}

	best, bestScore := -1, 0.0
	for i, c := range cats {
		for _, candidate := range []string{c.Name, c.AliasName} {
			if score := textutils.TokenOverlap(label, candidate); score > bestScore {
				best, bestScore = i, score
			}
		}
	}
	if best >= 0 && bestScore >= CategoryMatchThreshold {
		return cats[best], true
	}
	return models.Category{}, false
}

// ResolveDescription maps a key echoed by a classifier back to one of the
// requested descriptions.
func ResolveDescription(key string, requested []string) (string, bool) {
	for _, d := range requested {
		if d == key {
			return d, true
		}
	}
	trimmed := textutils.CollapseSpaces(key)
	for _, d := range requested {
		if strings.EqualFold(textutils.CollapseSpaces(d), trimmed) {
			return d, true
		}
	}

	best, bestScore := "", 0.0
	for _, d := range requested {
		if score := textutils.TokenOverlap(key, d); score > bestScore {
			best, bestScore = d, score
		}
	}
	if bestScore >= DescriptionMatchThreshold {
		return best, true
	}
	return "", false
}
