package columns

import (
	"strings"

	"fjacquet/bank-ingest/internal/currencyutils"
	"fjacquet/bank-ingest/internal/dateutils"
	"fjacquet/bank-ingest/internal/parsererror"
	"fjacquet/bank-ingest/internal/textutils"
)

// Content-shape thresholds. They were tuned on real exports; change them
// together with the boundary tests.
const (
	// SampleRows is how many data rows the content pass inspects.
	SampleRows = 10
	// DateShapeMajority is the share of samples that must look like dates.
	DateShapeMajority = 0.5
	// AmountShapeMajority is the share of samples that must look like money.
	AmountShapeMajority = 0.5
	// MinDescriptionLength is the average sample length a description
	// column must exceed.
	MinDescriptionLength = 6
)

// Mapping assigns column indexes to fields.
type Mapping struct {
	Headers []string
	index   map[Field]int
	source  map[Field]Pass
}

func newMapping(headers []string) Mapping {
	return Mapping{Headers: headers, index: map[Field]int{}, source: map[Field]Pass{}}
}

// Column returns the column index of f, or -1.
func (m Mapping) Column(f Field) int {
	if i, ok := m.index[f]; ok {
		return i
	}
	return -1
}

// Has reports whether f was resolved.
func (m Mapping) Has(f Field) bool {
	_, ok := m.index[f]
	return ok
}

// Source returns how f was resolved, or "" when it was not.
func (m Mapping) Source(f Field) Pass {
	return m.source[f]
}

// HasDebitCredit reports whether both split amount columns were found.
func (m Mapping) HasDebitCredit() bool {
	return m.Has(FieldDebit) && m.Has(FieldCredit)
}

// Value returns the trimmed cell of row for f, or "".
func (m Mapping) Value(row []string, f Field) string {
	i := m.Column(f)
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Missing lists the required fields that are unresolved.
func (m Mapping) Missing() []string {
	var missing []string
	if !m.Has(FieldDate) {
		missing = append(missing, string(FieldDate))
	}
	if !m.Has(FieldDescription) {
		missing = append(missing, string(FieldDescription))
	}
	if !m.Has(FieldAmount) && !m.HasDebitCredit() {
		missing = append(missing, string(FieldAmount))
	}
	return missing
}

func (m Mapping) set(f Field, col int, p Pass) {
	m.index[f] = col
	m.source[f] = p
}

func (m Mapping) claimed(col int) bool {
	for _, c := range m.index {
		if c == col {
			return true
		}
	}
	return false
}

// Detect resolves headers to fields. samples are the first data rows; only
// the first SampleRows are used. A *parsererror.MissingColumnsError is
// returned, together with the partial mapping, when a required field
// stays unresolved.
func Detect(headers []string, samples [][]string) (Mapping, error) {
	m := newMapping(headers)
	if len(samples) > SampleRows {
		samples = samples[:SampleRows]
	}

	for _, fp := range headerPatterns {
		matchHeader(m, fp)
	}

	if !m.Has(FieldDate) {
		if col := bestColumn(m, samples, dateScore); col >= 0 {
			m.set(FieldDate, col, PassContent)
		}
	}
	if !m.Has(FieldAmount) && !m.Has(FieldDebit) && !m.Has(FieldCredit) {
		if col := bestColumn(m, samples, amountScore); col >= 0 {
			m.set(FieldAmount, col, PassContent)
		}
	}
	if !m.Has(FieldDescription) {
		if col := bestDescription(m, samples); col >= 0 {
			m.set(FieldDescription, col, PassContent)
		}
	}

	// Some exports carry only the transaction-currency amount.
	if !m.Has(FieldAmount) && !m.HasDebitCredit() && m.Has(FieldOriginalAmount) {
		col, src := m.Column(FieldOriginalAmount), m.Source(FieldOriginalAmount)
		delete(m.index, FieldOriginalAmount)
		delete(m.source, FieldOriginalAmount)
		m.set(FieldAmount, col, src)
	}

	if missing := m.Missing(); len(missing) > 0 {
		return m, &parsererror.MissingColumnsError{Missing: missing}
	}
	return m, nil
}

func matchHeader(m Mapping, fp fieldPatterns) {
	for _, re := range fp.patterns {
		for col, h := range m.Headers {
			h = strings.TrimSpace(h)
			if h == "" || m.claimed(col) {
				continue
			}
			if re.MatchString(h) {
				m.set(fp.field, col, PassHeader)
				return
			}
		}
	}
}

type scoreFunc func(values []string) bool

func dateScore(values []string) bool {
	return shareMatching(values, dateutils.IsDateShaped) >= DateShapeMajority
}

func amountScore(values []string) bool {
	return shareMatching(values, currencyutils.IsAmountShaped) >= AmountShapeMajority
}

// shareMatching divides matches by the number of sample rows, so rows
// missing the cell count against the column.
func shareMatching(values []string, match func(string) bool) float64 {
	if len(values) == 0 {
		return 0
	}
	n := 0
	for _, v := range values {
		if match(strings.TrimSpace(v)) {
			n++
		}
	}
	return float64(n) / float64(len(values))
}

func bestColumn(m Mapping, samples [][]string, ok scoreFunc) int {
	if len(samples) == 0 {
		return -1
	}
	for col := 0; col < columnCount(m, samples); col++ {
		if m.claimed(col) {
			continue
		}
		if ok(column(samples, col)) {
			return col
		}
	}
	return -1
}

func bestDescription(m Mapping, samples [][]string) int {
	best, bestLen := -1, 0.0
	for col := 0; col < columnCount(m, samples); col++ {
		if m.claimed(col) {
			continue
		}
		values := column(samples, col)
		if len(values) == 0 {
			continue
		}
		total, nonLatin := 0, false
		for _, v := range values {
			v = strings.TrimSpace(v)
			total += len([]rune(v))
			if textutils.HasNonLatinLetters(v) {
				nonLatin = true
			}
		}
		avg := float64(total) / float64(len(values))
		if avg > MinDescriptionLength && nonLatin && avg > bestLen {
			best, bestLen = col, avg
		}
	}
	return best
}

func columnCount(m Mapping, samples [][]string) int {
	n := len(m.Headers)
	for _, row := range samples {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

func column(samples [][]string, col int) []string {
	out := make([]string, len(samples))
	for i, row := range samples {
		if col < len(row) {
			out[i] = row[col]
		}
	}
	return out
}
