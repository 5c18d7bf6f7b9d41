// Package recurring proposes marking merchants as recurring, or unmarking
// them once they stop, from a transaction history.
package recurring

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/bank-ingest/internal/dateutils"
	"fjacquet/bank-ingest/internal/merchant"
	"fjacquet/bank-ingest/internal/models"
)

const (
	MinPeriods      = 3
	MinStreak       = 3
	RecentWindow    = 45 * 24 * time.Hour
	AmountTolerance = 5
	MinSilence      = 60 * 24 * time.Hour
	SilenceFactor   = 1.8
	DefaultTopN     = 5
	DefaultSnooze   = 30 * 24 * time.Hour
)

// Action is what a suggestion proposes.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// Suggestion proposes flipping the recurring flag on TransactionIDs.
type Suggestion struct {
	Key            string           `json:"key"`
	Action         Action           `json:"action"`
	Direction      models.Direction `json:"direction"`
	Signature      string           `json:"signature"`
	Description    string           `json:"description"`
	TransactionIDs []string         `json:"transaction_ids"`
	LastDate       time.Time        `json:"last_date"`
	Periods        int              `json:"periods"`
	TypicalAmount  decimal.Decimal  `json:"typical_amount"`
}

// SnoozeKey identifies a suggestion across evaluations.
func SnoozeKey(action Action, direction models.Direction, signature string) string {
	return string(action) + "|" + string(direction) + "|" + signature
}

// Params tunes the engine.
type Params struct {
	MinPeriods      int
	MinStreak       int
	RecentWindow    time.Duration
	AmountTolerance decimal.Decimal
	MinSilence      time.Duration
	SilenceFactor   float64
	TopN            int
}

// DefaultParams returns the package constants as Params.
func DefaultParams() Params {
	return Params{
		MinPeriods:      MinPeriods,
		MinStreak:       MinStreak,
		RecentWindow:    RecentWindow,
		AmountTolerance: decimal.NewFromInt(AmountTolerance),
		MinSilence:      MinSilence,
		SilenceFactor:   SilenceFactor,
		TopN:            DefaultTopN,
	}
}

// Engine evaluates clusters on demand; it keeps no state.
type Engine struct {
	p Params
}

// NewEngine returns an Engine; zero fields of p take their defaults.
func NewEngine(p Params) *Engine {
	d := DefaultParams()
	if p.MinPeriods <= 0 {
		p.MinPeriods = d.MinPeriods
	}
	if p.MinStreak <= 0 {
		p.MinStreak = d.MinStreak
	}
	if p.RecentWindow <= 0 {
		p.RecentWindow = d.RecentWindow
	}
	if !p.AmountTolerance.IsPositive() {
		p.AmountTolerance = d.AmountTolerance
	}
	if p.MinSilence <= 0 {
		p.MinSilence = d.MinSilence
	}
	if p.SilenceFactor <= 0 {
		p.SilenceFactor = d.SilenceFactor
	}
	if p.TopN <= 0 {
		p.TopN = d.TopN
	}
	return &Engine{p: p}
}

type clusterKey struct {
	signature string
	direction models.Direction
}

type cluster struct {
	recurring []models.StoredTransaction
	other     []models.StoredTransaction
}

// Suggest returns at most TopN suggestions, most recent first. Suggestions
// whose key is snoozed past now are left out.
func (e *Engine) Suggest(txns []models.StoredTransaction, snoozes map[string]time.Time, now time.Time) []Suggestion {
	out := e.All(txns, snoozes, now)
	if len(out) > e.p.TopN {
		out = out[:e.p.TopN]
	}
	return out
}

// All is Suggest without the TopN cap.
func (e *Engine) All(txns []models.StoredTransaction, snoozes map[string]time.Time, now time.Time) []Suggestion {
	clusters := make(map[clusterKey]*cluster)
	for _, t := range txns {
		sig := merchant.Signature(t.Description)
		if sig == "" {
			continue
		}
		k := clusterKey{signature: sig, direction: t.Direction()}
		c := clusters[k]
		if c == nil {
			c = &cluster{}
			clusters[k] = c
		}
		if t.IsRecurring {
			c.recurring = append(c.recurring, t)
		} else {
			c.other = append(c.other, t)
		}
	}

	var out []Suggestion
	for k, c := range clusters {
		for _, s := range []*Suggestion{e.proposeAdd(k, c.other, now), e.proposeRemove(k, c, now)} {
			if s == nil {
				continue
			}
			if until, ok := snoozes[s.Key]; ok && until.After(now) {
				continue
			}
			out = append(out, *s)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastDate.Equal(out[j].LastDate) {
			return out[i].LastDate.After(out[j].LastDate)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func (e *Engine) proposeAdd(k clusterKey, txns []models.StoredTransaction, now time.Time) *Suggestion {
	if len(txns) < e.p.MinPeriods {
		return nil
	}
	periods := distinctPeriods(txns)
	if len(periods) < e.p.MinPeriods || longestStreak(periods) < e.p.MinStreak {
		return nil
	}
	last := lastDate(txns)
	if now.Sub(last) > e.p.RecentWindow {
		return nil
	}
	med := medianAmount(txns)
	for _, t := range txns {
		if t.Amount.Sub(med).Abs().GreaterThan(e.p.AmountTolerance) {
			return nil
		}
	}
	return newSuggestion(ActionAdd, k, txns, last, len(periods), med)
}

func (e *Engine) proposeRemove(k clusterKey, c *cluster, now time.Time) *Suggestion {
	if len(c.recurring) == 0 {
		return nil
	}
	last := lastDate(c.recurring)
	for _, t := range c.other {
		if t.Date.After(last) {
			return nil
		}
	}
	silence := e.p.MinSilence
	if typical := time.Duration(float64(typicalInterval(c.recurring)) * e.p.SilenceFactor); typical > silence {
		silence = typical
	}
	if now.Sub(last) <= silence {
		return nil
	}
	return newSuggestion(ActionRemove, k, c.recurring, last, len(distinctPeriods(c.recurring)), medianAmount(c.recurring))
}

func newSuggestion(action Action, k clusterKey, txns []models.StoredTransaction, last time.Time, periods int, typical decimal.Decimal) *Suggestion {
	ids := make([]string, len(txns))
	for i, t := range txns {
		ids[i] = t.ID
	}
	sort.Strings(ids)
	return &Suggestion{
		Key:            SnoozeKey(action, k.direction, k.signature),
		Action:         action,
		Direction:      k.direction,
		Signature:      k.signature,
		Description:    latestDescription(txns),
		TransactionIDs: ids,
		LastDate:       last,
		Periods:        periods,
		TypicalAmount:  typical,
	}
}

// distinctPeriods returns the sorted calendar-month indexes of txns.
func distinctPeriods(txns []models.StoredTransaction) []int {
	seen := make(map[int]struct{})
	for _, t := range txns {
		seen[dateutils.MonthIndex(t.Date)] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

func longestStreak(periods []int) int {
	if len(periods) == 0 {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(periods); i++ {
		if periods[i] == periods[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// typicalInterval is the median gap between consecutive distinct days, or
// zero with fewer than two.
func typicalInterval(txns []models.StoredTransaction) time.Duration {
	days := make([]time.Time, 0, len(txns))
	seen := make(map[string]struct{})
	for _, t := range txns {
		d := dateutils.ToISODate(t.Date)
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, t.Date)
	}
	if len(days) < 2 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	gaps := make([]time.Duration, len(days)-1)
	for i := 1; i < len(days); i++ {
		gaps[i-1] = days[i].Sub(days[i-1])
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })
	mid := len(gaps) / 2
	if len(gaps)%2 == 1 {
		return gaps[mid]
	}
	return (gaps[mid-1] + gaps[mid]) / 2
}

func medianAmount(txns []models.StoredTransaction) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(txns))
	for i, t := range txns {
		amounts[i] = t.Amount
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i].LessThan(amounts[j]) })
	mid := len(amounts) / 2
	if len(amounts)%2 == 1 {
		return amounts[mid]
	}
	return amounts[mid-1].Add(amounts[mid]).Div(decimal.NewFromInt(2))
}

func lastDate(txns []models.StoredTransaction) time.Time {
	var last time.Time
	for _, t := range txns {
		if t.Date.After(last) {
			last = t.Date
		}
	}
	return last
}

func latestDescription(txns []models.StoredTransaction) string {
	var last time.Time
	desc := ""
	for _, t := range txns {
		if desc == "" || t.Date.After(last) {
			last, desc = t.Date, strings.TrimSpace(t.Description)
		}
	}
	return desc
}
