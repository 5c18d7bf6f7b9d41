// Package dateutils parses the date notations found in statement exports.
package dateutils

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayoutISO = "2006-01-02"
	DateLayoutIL  = "02/01/2006"
)

// StatementLayouts is tried in order. Day-first layouts come before ISO and
// US-style layouts because every supported issuer writes day-first dates.
var StatementLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"2/1/06",
	"02-01-2006",
	"2-1-2006",
	"02-01-06",
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
}

// fallbackLayouts cover textual months and full timestamps.
var fallbackLayouts = []string{
	time.RFC3339,
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"01/02/2006",
}

// Excel stores dates as days since 1899-12-30. The accepted range keeps
// ordinary amounts from being mistaken for dates.
const (
	minExcelSerial = 20000 // 1954
	maxExcelSerial = 80000 // 2119
)

var (
	excelEpoch  = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	spaceRegex  = regexp.MustCompile(`\s+`)
	shapeRegexp = regexp.MustCompile(`^(\d{1,2}[./-]\d{1,2}[./-]\d{2,4}|\d{4}[./-]\d{1,2}[./-]\d{1,2})([ T]\d{1,2}:\d{2}(:\d{2})?)?$`)
)

// ParseDate parses s with StatementLayouts, then as an Excel serial number,
// then with a few generic layouts. The result is a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	s = CleanDateString(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range StatementLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}

	if t, ok := FromExcelSerial(s); ok {
		return t, nil
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// FromExcelSerial converts a spreadsheet serial day number such as "45292"
// or "45292.5".
func FromExcelSerial(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || f < minExcelSerial || f > maxExcelSerial {
		return time.Time{}, false
	}
	return excelEpoch.AddDate(0, 0, int(math.Floor(f))), true
}

// IsDateShaped reports whether s looks like a numeric date, without
// validating that it is a real calendar day.
func IsDateShaped(s string) bool {
	return shapeRegexp.MatchString(CleanDateString(s))
}

// CleanDateString trims and collapses whitespace.
func CleanDateString(s string) string {
	return spaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ToISODate formats t as YYYY-MM-DD.
func ToISODate(t time.Time) string {
	return t.Format(DateLayoutISO)
}

// StartOfMonth returns midnight UTC on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthIndex numbers calendar months so consecutive months differ by one.
func MonthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
