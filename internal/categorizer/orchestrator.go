package categorizer

import (
	"context"
	"sort"
	"strings"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/merchant"
	"fjacquet/bank-ingest/internal/models"
)

// Strategy names the source of an assignment.
type Strategy string

const (
	StrategyAI        Strategy = "ai"
	StrategyHeuristic Strategy = "heuristic"
	StrategyKeyword   Strategy = "keyword"
)

// Assignment is the category chosen for one description.
type Assignment struct {
	Category models.Category
	Strategy Strategy
}

// KeywordLearner persists a keyword for a category.
type KeywordLearner interface {
	AddKeyword(ctx context.Context, categoryID, keyword string) error
}

// Options wires an Orchestrator. A nil AI classifier disables the AI step.
type Options struct {
	AI            Classifier
	Heuristic     Classifier
	Learner       KeywordLearner
	LearnKeywords bool
}

// Orchestrator runs the AI classifier and falls back to the heuristic
// table and learned keywords for whatever it left unanswered.
type Orchestrator struct {
	ai        Classifier
	heuristic Classifier
	keywords  *KeywordCategorizer
	learner   KeywordLearner
	learn     bool
	logger    logging.Logger
}

// NewOrchestrator builds an Orchestrator. A nil heuristic uses the default
// merchant table.
func NewOrchestrator(opts Options, logger logging.Logger) *Orchestrator {
	if opts.Heuristic == nil {
		opts.Heuristic = NewHeuristicClassifier(nil)
	}
	return &Orchestrator{
		ai:        opts.AI,
		heuristic: opts.Heuristic,
		keywords:  NewKeywordCategorizer(),
		learner:   opts.Learner,
		learn:     opts.LearnKeywords && opts.Learner != nil,
		logger:    logging.OrDefault(logger),
	}
}

// AIEnabled reports whether an AI classifier is configured.
func (o *Orchestrator) AIEnabled() bool { return o.ai != nil }

// Categorize assigns categories to the distinct descriptions given.
// Descriptions nothing could categorize are absent from the result.
func (o *Orchestrator) Categorize(ctx context.Context, descriptions []string, snap *Snapshot) map[string]Assignment {
	out := make(map[string]Assignment)
	uniq := unique(descriptions)
	if len(uniq) == 0 || len(snap.Categories()) == 0 {
		return out
	}

	if o.ai != nil {
		o.classifyWithAI(ctx, uniq, snap, out)
	}

	remaining := make([]string, 0, len(uniq))
	for _, d := range uniq {
		if _, done := out[d]; !done {
			remaining = append(remaining, d)
		}
	}
	if len(remaining) == 0 {
		return out
	}

	labels, err := o.heuristic.Classify(ctx, remaining, snap.Names())
	if err != nil {
		o.logger.WithError(err).Warn("heuristic classification failed")
	}
	for _, d := range remaining {
		if label, ok := labels[d]; ok {
			if cat, ok := ResolveCategory(label, snap); ok {
				out[d] = Assignment{Category: cat, Strategy: StrategyHeuristic}
				continue
			}
		}
		if cat, ok := o.keywords.Match(d, snap); ok {
			out[d] = Assignment{Category: cat, Strategy: StrategyKeyword}
		}
	}

	o.logger.Debug("categorization finished",
		logging.F(logging.FieldCount, len(out)),
		logging.F("requested", len(uniq)))
	return out
}

func (o *Orchestrator) classifyWithAI(ctx context.Context, uniq []string, snap *Snapshot, out map[string]Assignment) {
	labels, err := o.ai.Classify(ctx, uniq, snap.Names())
	if err != nil {
		o.logger.WithError(err).Warn("AI categorization failed, using heuristics",
			logging.F(logging.FieldCount, len(uniq)))
		return
	}

	// Sorted keys keep assignments stable when two reply keys resolve to
	// the same description.
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	learned := make(map[string]struct{})
	for _, key := range keys {
		desc, ok := ResolveDescription(key, uniq)
		if !ok {
			o.logger.Debug("AI answered an unknown description", logging.F("key", key))
			continue
		}
		if _, done := out[desc]; done {
			continue
		}
		cat, ok := ResolveCategory(labels[key], snap)
		if !ok {
			o.logger.Debug("AI label matches no category",
				logging.F(logging.FieldCategory, labels[key]))
			continue
		}
		out[desc] = Assignment{Category: cat, Strategy: StrategyAI}
		if o.learn {
			o.learnKeyword(ctx, desc, cat, snap, learned)
		}
	}
}

// learnKeyword stores the merchant signature of desc as a keyword of cat
// unless the keyword categorizer already resolves it there.
func (o *Orchestrator) learnKeyword(ctx context.Context, desc string, cat models.Category, snap *Snapshot, learned map[string]struct{}) {
	sig := merchant.Signature(desc)
	if sig == "" {
		return
	}
	key := cat.ID + "|" + sig
	if _, done := learned[key]; done {
		return
	}
	learned[key] = struct{}{}
	if existing, ok := o.keywords.Match(desc, snap); ok && existing.ID == cat.ID {
		return
	}
	if err := o.learner.AddKeyword(ctx, cat.ID, sig); err != nil {
		o.logger.WithError(err).Warn("failed to learn keyword",
			logging.F(logging.FieldSignature, sig),
			logging.F(logging.FieldCategory, cat.Name))
		return
	}
	o.logger.Info("learned keyword",
		logging.F(logging.FieldSignature, sig),
		logging.F(logging.FieldCategory, cat.Name))
}

// ExamplesFor picks up to n heuristic rules whose alias resolves in snap,
// as description to category-name pairs for a classifier prompt.
func ExamplesFor(snap *Snapshot, rules []HeuristicRule, n int) map[string]string {
	out := make(map[string]string)
	used := make(map[string]struct{})
	for _, r := range rules {
		if len(out) >= n {
			break
		}
		cat, ok := ResolveCategory(r.Alias, snap)
		if !ok {
			continue
		}
		if _, dup := used[cat.ID]; dup {
			continue
		}
		used[cat.ID] = struct{}{}
		out[strings.TrimSpace(r.Match)] = cat.Name
	}
	return out
}

func unique(descriptions []string) []string {
	seen := make(map[string]struct{}, len(descriptions))
	out := make([]string, 0, len(descriptions))
	for _, d := range descriptions {
		if strings.TrimSpace(d) == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
