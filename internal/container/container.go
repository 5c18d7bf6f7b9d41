// Package container wires the application's dependencies from a loaded
// configuration: the store, the categorization strategies, the ingestion
// pipeline and the recurring suggestion service.
package container

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/bank-ingest/internal/categorizer"
	"fjacquet/bank-ingest/internal/config"
	"fjacquet/bank-ingest/internal/factory"
	"fjacquet/bank-ingest/internal/ingest"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/pdfparser"
	"fjacquet/bank-ingest/internal/recurring"
	"fjacquet/bank-ingest/internal/store"
)

// DefaultSeedFile is looked up with store.FindConfigFile when no seed file
// is configured.
const DefaultSeedFile = "categories.yaml"

// PromptExamples is how many heuristic rules are shown to the AI classifier.
const PromptExamples = 8

// Options overrides parts of the wiring, mostly for tests.
type Options struct {
	Logger logging.Logger
	// Classifier replaces the Gemini classifier when set.
	Classifier categorizer.Classifier
	Extractor  pdfparser.TextExtractor
	// Credentials resolves the categorization API key; nil reads the config.
	Credentials config.CredentialProvider
}

// Container holds every application dependency. Fields are private and
// only reachable through getters.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	store     *store.Store
	gemini    *categorizer.GeminiClassifier
	heuristic *categorizer.HeuristicClassifier
	orch      *categorizer.Orchestrator
	ingest    *ingest.Service
	recurring *recurring.Service
}

// NewContainer opens the database, seeds categories when the table is
// empty and builds the services.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	return NewContainerWithOptions(ctx, cfg, Options{})
}

// NewContainerWithOptions is NewContainer with overrides.
func NewContainerWithOptions(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	st, err := store.Open(ctx, cfg.Database.Path, logger)
	if err != nil {
		return nil, err
	}
	c := &Container{logger: logger, config: cfg, store: st}

	if err := c.seed(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	rules := categorizer.DefaultHeuristics
	if path := cfg.Categorization.HeuristicsFile; path != "" {
		rules, err = categorizer.LoadHeuristicsFile(path)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
	}
	c.heuristic = categorizer.NewHeuristicClassifier(rules)

	ai := opts.Classifier
	if ai == nil {
		creds := opts.Credentials
		if creds == nil {
			creds = config.NewCredentialProvider(cfg)
		}
		if key := creds.CategorizationAPIKey(); key != "" {
			c.gemini, err = c.newGemini(ctx, key, rules)
			if err != nil {
				_ = st.Close()
				return nil, err
			}
			ai = c.gemini
		}
	}
	if ai != nil {
		logger.Info("AI categorization enabled", logging.F("classifier", ai.Name()))
	} else {
		logger.Info("AI categorization disabled")
	}

	c.orch = categorizer.NewOrchestrator(categorizer.Options{
		AI:            ai,
		Heuristic:     c.heuristic,
		Learner:       st.Categories(),
		LearnKeywords: cfg.Categorization.LearnKeywords,
	}, logger)

	c.ingest = ingest.NewService(ingest.Options{
		Factory:        factory.New(logger, opts.Extractor),
		Categorizer:    c.orch,
		Transactions:   st.Transactions(),
		Accounts:       st.Accounts(),
		Categories:     st.Categories(),
		Recurring:      st.RecurringKeywords(),
		Concurrency:    cfg.Ingest.Concurrency,
		MaxPropagation: cfg.Categorization.MaxPropagation,
		LearnKeywords:  cfg.Categorization.LearnKeywords,
	}, logger)

	c.recurring = recurring.NewService(
		recurring.NewEngine(recurringParams(cfg)),
		st.Transactions(), st.RecurringKeywords(), st.Snoozes(),
		cfg.SnoozeDuration(), logger)

	logger.Info("Container initialized",
		logging.F("database", st.Path()),
		logging.F("ai_enabled", ai != nil))
	return c, nil
}

func (c *Container) seed(ctx context.Context) error {
	path := c.config.Categorization.SeedFile
	if path == "" {
		found, err := store.FindConfigFile(DefaultSeedFile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				c.logger.Debug("no category seed file found")
				return nil
			}
			return err
		}
		path = found
	}
	cats, err := store.LoadSeedFile(path)
	if err != nil {
		return err
	}
	if _, err := c.store.Seed(ctx, cats); err != nil {
		return fmt.Errorf("failed to seed categories from %s: %w", path, err)
	}
	return nil
}

func (c *Container) newGemini(ctx context.Context, key string, rules []categorizer.HeuristicRule) (*categorizer.GeminiClassifier, error) {
	cats, err := c.store.Categories().ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categorizer.NewGeminiClassifier(ctx, key, categorizer.GeminiOptions{
		Model:     c.config.AI.Model,
		ChunkSize: c.config.AI.MaxDescriptionsPerCall,
		Timeout:   c.config.AITimeout(),
		Examples:  categorizer.ExamplesFor(categorizer.NewSnapshot(cats), rules, PromptExamples),
	}, c.logger)
}

func recurringParams(cfg *config.Config) recurring.Params {
	p := recurring.DefaultParams()
	if cfg.Recurring.TopN > 0 {
		p.TopN = cfg.Recurring.TopN
	}
	if cfg.Recurring.RecentWindowDays > 0 {
		p.RecentWindow = time.Duration(cfg.Recurring.RecentWindowDays) * 24 * time.Hour
	}
	if cfg.Recurring.AmountTolerance > 0 {
		p.AmountTolerance = decimal.NewFromFloat(cfg.Recurring.AmountTolerance)
	}
	return p
}

// GetLogger returns the shared logger.
func (c *Container) GetLogger() logging.Logger { return c.logger }

// GetConfig returns the configuration the container was built from.
func (c *Container) GetConfig() *config.Config { return c.config }

// GetStore returns the open store.
func (c *Container) GetStore() *store.Store { return c.store }

// GetOrchestrator returns the categorization orchestrator.
func (c *Container) GetOrchestrator() *categorizer.Orchestrator { return c.orch }

// GetIngest returns the ingestion pipeline.
func (c *Container) GetIngest() *ingest.Service { return c.ingest }

// GetRecurring returns the recurring suggestion service.
func (c *Container) GetRecurring() *recurring.Service { return c.recurring }

// Close releases the AI client and the database.
func (c *Container) Close() error {
	var errs []error
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.store.Close(); err != nil {
		errs = append(errs, err)
	}
	c.logger.Debug("Container closed")
	return errors.Join(errs...)
}
