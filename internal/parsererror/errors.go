// Package parsererror defines the typed errors raised while reading
// statement files and categorizing their rows.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned when no parser accepts a file.
var ErrUnsupportedFormat = errors.New("unsupported statement format")

// ParseError is a row-level failure: one cell could not be converted.
type ParseError struct {
	Format string
	Row    int
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s row %d: failed to parse %s='%s': %v", e.Format, e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidFormatError means the document is not what the parser expects,
// e.g. a PDF from another bank. LocalizedMsg is shown to end users as is.
type InvalidFormatError struct {
	File         string
	Expected     string
	Msg          string
	LocalizedMsg string
}

func (e *InvalidFormatError) Error() string {
	msg := fmt.Sprintf("invalid format in file '%s': %s. Expected: %s", e.File, e.Msg, e.Expected)
	if e.LocalizedMsg != "" {
		msg += " (" + e.LocalizedMsg + ")"
	}
	return msg
}

// DataExtractionError means the document format is right but nothing
// usable could be read from it.
type DataExtractionError struct {
	File   string
	Reason string
}

func (e *DataExtractionError) Error() string {
	return fmt.Sprintf("no data could be extracted from '%s': %s", e.File, e.Reason)
}

// MissingColumnsError lists the required fields the column detector could
// not resolve.
type MissingColumnsError struct {
	File    string
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	if e.File == "" {
		return "missing required columns: " + strings.Join(e.Missing, ", ")
	}
	return fmt.Sprintf("missing required columns in '%s': %s", e.File, strings.Join(e.Missing, ", "))
}

// CategorizationError wraps a failed call to a classifier. It is logged and
// never returned past the categorization orchestrator.
type CategorizationError struct {
	Classifier string
	Count      int
	Err        error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("categorization of %d descriptions using %s failed: %v", e.Count, e.Classifier, e.Err)
}

func (e *CategorizationError) Unwrap() error { return e.Err }

// IsFileLevel reports whether err should turn the whole file into a
// structured failure rather than a skipped row.
func IsFileLevel(err error) bool {
	var (
		invalid *InvalidFormatError
		empty   *DataExtractionError
		missing *MissingColumnsError
	)
	return errors.As(err, &invalid) || errors.As(err, &empty) ||
		errors.As(err, &missing) || errors.Is(err, ErrUnsupportedFormat)
}
