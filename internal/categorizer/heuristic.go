package categorizer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"fjacquet/bank-ingest/internal/textutils"
)

// HeuristicRule maps a merchant substring to a category alias.
type HeuristicRule struct {
	Match string `yaml:"match"`
	Alias string `yaml:"alias"`
}

type heuristicsFile struct {
	Rules []HeuristicRule `yaml:"rules"`
}

// DefaultHeuristics covers well-known Israeli merchants and payees.
var DefaultHeuristics = []HeuristicRule{
	{"שופרסל", "groceries"},
	{"רמי לוי", "groceries"},
	{"יוחננוף", "groceries"},
	{"ויקטורי", "groceries"},
	{"טיב טעם", "groceries"},
	{"אושר עד", "groceries"},
	{"מגה בעיר", "groceries"},
	{"shufersal", "groceries"},
	{"סופר פארם", "pharmacy"},
	{"super-pharm", "pharmacy"},
	{"super pharm", "pharmacy"},
	{"be פארם", "pharmacy"},
	{"פז", "fuel"},
	{"דלק", "fuel"},
	{"סונול", "fuel"},
	{"דור אלון", "fuel"},
	{"ten", "fuel"},
	{"רב קו", "transport"},
	{"רב-קו", "transport"},
	{"רכבת ישראל", "transport"},
	{"gett", "transport"},
	{"yango", "transport"},
	{"פנגו", "transport"},
	{"pango", "transport"},
	{"netflix", "subscriptions"},
	{"spotify", "subscriptions"},
	{"apple.com", "subscriptions"},
	{"google", "subscriptions"},
	{"פרטנר", "communications"},
	{"סלקום", "communications"},
	{"בזק", "communications"},
	{"הוט", "communications"},
	{"גולן טלקום", "communications"},
	{"wolt", "restaurants"},
	{"וולט", "restaurants"},
	{"תן ביס", "restaurants"},
	{"10bis", "restaurants"},
	{"מקדונלד", "restaurants"},
	{"ארומה", "restaurants"},
	{"חברת החשמל", "utilities"},
	{"חשמל", "utilities"},
	{"מקורות", "utilities"},
	{"תאגיד מים", "utilities"},
	{"ארנונה", "utilities"},
	{"עיריית", "utilities"},
	{"ביטוח", "insurance"},
	{"הראל", "insurance"},
	{"מגדל", "insurance"},
	{"הפניקס", "insurance"},
	{"כלל חברה לביטוח", "insurance"},
	{"amazon", "shopping"},
	{"aliexpress", "shopping"},
	{"ebay", "shopping"},
	{"shein", "shopping"},
	{"איקאה", "shopping"},
	{"משכורת", "salary"},
	{"salary", "salary"},
	{"כללית", "health"},
	{"מכבי", "health"},
	{"מאוחדת", "health"},
	{"קופת חולים", "health"},
}

// LoadHeuristicsFile reads rules from a YAML file of the form
// "rules: [{match: ..., alias: ...}]".
func LoadHeuristicsFile(path string) ([]HeuristicRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read heuristics file: %w", err)
	}
	var f heuristicsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("could not parse heuristics file %s: %w", path, err)
	}
	return f.Rules, nil
}

// HeuristicClassifier labels descriptions containing a known merchant
// term with the rule's alias. Short terms match whole words only.
type HeuristicClassifier struct {
	rules []HeuristicRule
}

// NewHeuristicClassifier uses rules, or DefaultHeuristics when rules is
// empty.
func NewHeuristicClassifier(rules []HeuristicRule) *HeuristicClassifier {
	if len(rules) == 0 {
		rules = DefaultHeuristics
	}
	normalized := make([]HeuristicRule, 0, len(rules))
	for _, r := range rules {
		if strings.TrimSpace(r.Match) == "" || strings.TrimSpace(r.Alias) == "" {
			continue
		}
		normalized = append(normalized, HeuristicRule{Match: strings.ToLower(r.Match), Alias: r.Alias})
	}
	return &HeuristicClassifier{rules: normalized}
}

// Name identifies the strategy in logs.
func (h *HeuristicClassifier) Name() string { return "heuristic" }

// Rules returns the active rules.
func (h *HeuristicClassifier) Rules() []HeuristicRule { return h.rules }

// Classify never fails; allowedLabels is ignored since aliases are resolved
// by the caller.
func (h *HeuristicClassifier) Classify(_ context.Context, descriptions []string, _ []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, d := range descriptions {
		if alias, ok := h.match(d); ok {
			out[d] = alias
		}
	}
	return out, nil
}

func (h *HeuristicClassifier) match(description string) (string, bool) {
	for _, r := range h.rules {
		if textutils.ContainsTerm(description, r.Match) {
			return r.Alias, true
		}
	}
	return "", false
}
