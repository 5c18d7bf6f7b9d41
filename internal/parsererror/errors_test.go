package parsererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "row parse error",
			err:      &ParseError{Format: "csv", Row: 4, Field: "date", Value: "31/31/24", Err: errors.New("no layout matched")},
			expected: "csv row 4: failed to parse date='31/31/24': no layout matched",
		},
		{
			name:     "invalid format without localized text",
			err:      &InvalidFormatError{File: "a.pdf", Expected: "HAPOALIM statement", Msg: "markers not found"},
			expected: "invalid format in file 'a.pdf': markers not found. Expected: HAPOALIM statement",
		},
		{
			name:     "invalid format with localized text",
			err:      &InvalidFormatError{File: "a.pdf", Expected: "HAPOALIM statement", Msg: "markers not found", LocalizedMsg: "הקובץ אינו דף חשבון"},
			expected: "invalid format in file 'a.pdf': markers not found. Expected: HAPOALIM statement (הקובץ אינו דף חשבון)",
		},
		{
			name:     "data extraction",
			err:      &DataExtractionError{File: "b.csv", Reason: "no header row"},
			expected: "no data could be extracted from 'b.csv': no header row",
		},
		{
			name:     "missing columns",
			err:      &MissingColumnsError{Missing: []string{"date", "amount"}},
			expected: "missing required columns: date, amount",
		},
		{
			name:     "missing columns with file",
			err:      &MissingColumnsError{File: "c.xlsx", Missing: []string{"description"}},
			expected: "missing required columns in 'c.xlsx': description",
		},
		{
			name:     "categorization",
			err:      &CategorizationError{Classifier: "gemini", Count: 3, Err: errors.New("timeout")},
			expected: "categorization of 3 descriptions using gemini failed: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	assert.ErrorIs(t, &ParseError{Err: cause}, cause)
	assert.ErrorIs(t, &CategorizationError{Err: cause}, cause)
}

func TestIsFileLevel(t *testing.T) {
	assert.True(t, IsFileLevel(fmt.Errorf("wrap: %w", &MissingColumnsError{Missing: []string{"date"}})))
	assert.True(t, IsFileLevel(&InvalidFormatError{}))
	assert.True(t, IsFileLevel(&DataExtractionError{}))
	assert.True(t, IsFileLevel(fmt.Errorf("x.doc: %w", ErrUnsupportedFormat)))
	assert.False(t, IsFileLevel(&ParseError{Err: errors.New("bad")}))
	assert.False(t, IsFileLevel(errors.New("disk full")))
}
