// Package ingest runs statement files through detection, parsing,
// normalization, de-duplication and categorization into the store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fjacquet/bank-ingest/internal/categorizer"
	"fjacquet/bank-ingest/internal/columns"
	"fjacquet/bank-ingest/internal/dedup"
	"fjacquet/bank-ingest/internal/factory"
	"fjacquet/bank-ingest/internal/institution"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/merchant"
	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/normalizer"
	"fjacquet/bank-ingest/internal/parser"
	"fjacquet/bank-ingest/internal/parsererror"
)

// DefaultMaxPropagation caps bulk category propagation.
const DefaultMaxPropagation = 200

// RawFile is an uploaded statement.
type RawFile struct {
	Name string
	Data []byte
}

// Options wires a Service.
type Options struct {
	Factory      *factory.Factory
	Categorizer  *categorizer.Orchestrator
	Transactions TransactionStore
	Accounts     AccountStore
	Categories   CategoryStore
	Recurring    RecurringKeywordStore

	// Concurrency bounds ImportAll; values below 1 mean 1.
	Concurrency int

	// MaxPropagation bounds ApplyToSimilar; zero uses DefaultMaxPropagation.
	MaxPropagation int
	LearnKeywords  bool
}

// Service is the ingestion pipeline.
type Service struct {
	factory        *factory.Factory
	normalizer     *normalizer.Normalizer
	resolver       *dedup.Resolver
	categorizer    *categorizer.Orchestrator
	txns           TransactionStore
	accounts       AccountStore
	categories     CategoryStore
	recurring      RecurringKeywordStore
	concurrency    int
	maxPropagation int
	learn          bool
	logger         logging.Logger

	mu       sync.Mutex
	accLocks map[string]*sync.Mutex
}

// NewService builds a Service. A nil factory uses the default parsers and a
// nil categorizer skips categorization.
func NewService(opts Options, logger logging.Logger) *Service {
	logger = logging.OrDefault(logger)
	if opts.Factory == nil {
		opts.Factory = factory.New(logger, nil)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.MaxPropagation <= 0 {
		opts.MaxPropagation = DefaultMaxPropagation
	}
	return &Service{
		factory:        opts.Factory,
		normalizer:     normalizer.New(logger),
		resolver:       dedup.NewResolver(logger),
		categorizer:    opts.Categorizer,
		txns:           opts.Transactions,
		accounts:       opts.Accounts,
		categories:     opts.Categories,
		recurring:      opts.Recurring,
		concurrency:    opts.Concurrency,
		maxPropagation: opts.MaxPropagation,
		learn:          opts.LearnKeywords,
		logger:         logger,
		accLocks:       make(map[string]*sync.Mutex),
	}
}

// Inspection is what Inspect learns about a file without normalizing it.
type Inspection struct {
	Institution models.Institution
	Format      parser.Format
	CardNumber  string
	Headers     []string
	Mapping     columns.Mapping
	Rows        int
}

type readResult struct {
	inst    models.Institution
	format  parser.Format
	table   *parser.Table
	mapping columns.Mapping
}

// read runs detection, parsing and column detection. The institution is
// returned even when a later step fails.
func (s *Service) read(ctx context.Context, f RawFile) (readResult, error) {
	r := readResult{inst: institution.Detect(f.Data, f.Name)}

	p, err := s.factory.ForFile(f.Name, f.Data)
	if err != nil {
		return r, err
	}
	r.format = p.Format()
	tbl, err := p.Parse(ctx, parser.Source{Name: f.Name, Data: f.Data, Institution: r.inst})
	if err != nil {
		return r, err
	}
	r.table = tbl
	r.inst = resolveInstitution(r.inst, tbl, f.Name)

	r.mapping, err = columns.Detect(tbl.Headers, tbl.TextRows())
	if err != nil {
		var missing *parsererror.MissingColumnsError
		if errors.As(err, &missing) {
			missing.File = f.Name
		}
		return r, err
	}
	return r, nil
}

// Inspect reports the institution, format and column mapping of a file.
func (s *Service) Inspect(ctx context.Context, f RawFile) (*Inspection, error) {
	r, err := s.read(ctx, f)
	out := &Inspection{Institution: r.inst, Format: r.format}
	if r.table != nil {
		out.Headers = r.table.Headers
		out.Rows = len(r.table.Rows)
		out.CardNumber = institution.ExtractCardNumber(r.inst, r.table.Meta.Banner, f.Name)
	}
	if err != nil {
		return out, err
	}
	out.Mapping = r.mapping
	return out, nil
}

// Parse reads a file without touching the store. File-level problems are
// reported in the result's Errors; the returned error is reserved for
// cancellation.
func (s *Service) Parse(ctx context.Context, f RawFile) (models.ParseResult, error) {
	log := s.logger.WithField(logging.FieldFile, f.Name)
	r, err := s.read(ctx, f)
	if err != nil {
		return fileFailure(models.ParseResult{Institution: r.inst}, err, log)
	}

	tbl := r.table
	out := s.normalizer.Normalize(tbl, r.mapping, r.inst)
	out.AccountNumber = tbl.Meta.AccountNumber
	out.HolderName = tbl.Meta.HolderName
	out.CardNumber = institution.ExtractCardNumber(r.inst, tbl.Meta.Banner, f.Name)
	log.Info("statement parsed",
		logging.F(logging.FieldInstitution, string(r.inst)),
		logging.F(logging.FieldFormat, string(r.format)),
		logging.F(logging.FieldCount, out.SuccessCount),
		logging.F("skipped", out.SkippedRows))
	return out, nil
}

// resolveInstitution prefers what the parser identified, then the table's
// own banner and headers, then detection on the raw bytes.
func resolveInstitution(detected models.Institution, tbl *parser.Table, name string) models.Institution {
	if tbl.Meta.Institution != "" && tbl.Meta.Institution != models.InstitutionOther {
		return tbl.Meta.Institution
	}
	if inst := institution.DetectText(tbl.Meta.Banner+"\n"+strings.Join(tbl.Headers, " "), ""); inst != models.InstitutionOther {
		return inst
	}
	if detected != models.InstitutionOther {
		return detected
	}
	return institution.DetectText("", name)
}

func fileFailure(res models.ParseResult, err error, log logging.Logger) (models.ParseResult, error) {
	if !parsererror.IsFileLevel(err) {
		return res, err
	}
	log.WithError(err).Warn("statement rejected")
	res.Errors = append(res.Errors, err.Error())
	return res, nil
}

// Import parses f and stores its new transactions. A file that cannot be
// parsed yields a result with Errors and no store writes.
func (s *Service) Import(ctx context.Context, f RawFile) (*models.ImportResult, error) {
	start := time.Now()
	res := &models.ImportResult{File: f.Name}

	parsed, err := s.Parse(ctx, f)
	if err != nil {
		return nil, err
	}
	res.FromParse(&parsed)
	if len(parsed.Transactions) == 0 {
		return res, nil
	}

	acc, err := s.accounts.FindOrCreate(ctx, parsed.Institution, parsed.CardNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}
	res.AccountID = acc.ID
	log := s.logger.WithFields(logging.F(logging.FieldFile, f.Name), logging.F(logging.FieldAccount, acc.ID))

	unlock := s.lockAccount(acc.ID)
	defer unlock()

	existing, err := s.txns.FindExisting(ctx, acc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing transactions: %w", err)
	}
	plan := s.resolver.Resolve(existing, parsed.Transactions)
	res.Duplicates = plan.Duplicates
	res.Warnings = append(res.Warnings, plan.Warnings...)

	rows := s.prepare(ctx, acc.ID, plan.Accepted, res)
	inserted, err := s.txns.InsertBatch(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to store transactions: %w", err)
	}
	res.Imported = inserted
	res.Duplicates += len(rows) - inserted

	for _, c := range plan.Corrections {
		if err := s.txns.UpdateOne(ctx, c.ExistingID, c.Update); err != nil {
			log.WithError(err).Warn("sign correction failed", logging.F(logging.FieldTransaction, c.ExistingID))
			res.Warnings = append(res.Warnings, fmt.Sprintf("could not correct transaction %s: %v", c.ExistingID, err))
			continue
		}
		res.CorrectedExisting++
	}

	log.Info("statement imported",
		logging.F("imported", res.Imported),
		logging.F("duplicates", res.Duplicates),
		logging.F("corrected", res.CorrectedExisting),
		logging.F(logging.FieldDuration, time.Since(start).String()))
	return res, nil
}

// prepare categorizes and flags accepted transactions.
func (s *Service) prepare(ctx context.Context, accountID string, accepted []models.ParsedTransaction, res *models.ImportResult) []models.StoredTransaction {
	rows := make([]models.StoredTransaction, len(accepted))
	descriptions := make([]string, len(accepted))
	for i, t := range accepted {
		rows[i] = models.StoredTransaction{ParsedTransaction: t, AccountID: accountID}
		descriptions[i] = t.Description
	}

	if assignments := s.categorize(ctx, descriptions); len(assignments) > 0 {
		for i := range rows {
			if a, ok := assignments[rows[i].Description]; ok {
				rows[i].CategoryID = a.Category.ID
				rows[i].IsAutoCategorized = true
				res.Categorized++
			}
		}
	}

	keywords := s.recurringKeywords(ctx)
	for i := range rows {
		if matchesRecurring(rows[i].Description, keywords) {
			rows[i].IsRecurring = true
			res.MarkedRecurring++
		}
	}
	return rows
}

func (s *Service) categorize(ctx context.Context, descriptions []string) map[string]categorizer.Assignment {
	if s.categorizer == nil || s.categories == nil || len(descriptions) == 0 {
		return nil
	}
	cats, err := s.categories.ListCategories(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("categories unavailable, importing uncategorized")
		return nil
	}
	return s.categorizer.Categorize(ctx, descriptions, categorizer.NewSnapshot(cats))
}

func (s *Service) recurringKeywords(ctx context.Context) []string {
	if s.recurring == nil {
		return nil
	}
	list, err := s.recurring.List(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("recurring keywords unavailable")
		return nil
	}
	out := make([]string, len(list))
	for i, k := range list {
		out[i] = k.Keyword
	}
	return out
}

// matchesRecurring reports whether description carries a recurring keyword,
// by signature or by substring.
func matchesRecurring(description string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	sig := merchant.Signature(description)
	lower := strings.ToLower(description)
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if k == sig || strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (s *Service) lockAccount(id string) func() {
	s.mu.Lock()
	l, ok := s.accLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.accLocks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// ImportAll imports files concurrently and returns their results in input
// order. A file that fails outright gets a result carrying the error;
// onDone, when set, is called after each file.
func (s *Service) ImportAll(ctx context.Context, files []RawFile, onDone func(*models.ImportResult)) ([]*models.ImportResult, error) {
	results := make([]*models.ImportResult, len(files))
	var doneMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := s.Import(gctx, f)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				s.logger.WithError(err).Error("import failed", logging.F(logging.FieldFile, f.Name))
				r = &models.ImportResult{File: f.Name, Errors: []string{err.Error()}}
			}
			results[i] = r
			if onDone != nil {
				doneMu.Lock()
				onDone(r)
				doneMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
