package institution

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"

	"fjacquet/bank-ingest/internal/models"
	"fjacquet/bank-ingest/internal/textutils"
)

// FallbackCodePage is used when content is not valid UTF-8.
const FallbackCodePage = "windows-1255"

var filenameCardPattern = regexp.MustCompile(`(?:card|כרטיס)[_\- ]?(\d{4})(?:\D|$)`)

// HeadLines bounds the banner: the leading lines, above the first
// table-like line, that are searched in registry order before the whole
// text is searched by earliest marker.
const HeadLines = 5

// MinTableCells is how many non-empty delimited cells make a line part of
// the table rather than the banner.
const MinTableCells = 3

var tableDelimiters = []string{",", ";", "\t", "|"}

// Detect classifies raw file content. Markers in the banner above the
// table are tried in registry order; otherwise the marker occurring first
// in the text wins, so a bank feed that lists a card issuer's bill among
// its rows keeps its own banner's institution. File name hints come last
// and unknown content yields OTHER.
func Detect(data []byte, filename string) models.Institution {
	return DetectText(DecodeAuto(data), filename)
}

// DetectText is Detect for content that is already text, such as text
// extracted from a PDF.
func DetectText(text, filename string) models.Institution {
	lower := strings.ToLower(text)
	if inst, ok := firstInRegistry(banner(lower, HeadLines)); ok {
		return inst
	}
	if inst, ok := earliestMarker(lower); ok {
		return inst
	}

	name := strings.ToLower(filepath.Base(filename))
	for _, c := range registry {
		for _, hint := range c.FilenameHints {
			if strings.Contains(name, hint) {
				return c.Institution
			}
		}
	}
	return models.InstitutionOther
}

// banner returns up to limit leading lines of text, stopping at the first
// line that looks like a table header or row.
func banner(text string, limit int) string {
	lines := strings.SplitN(text, "\n", limit+1)
	if len(lines) > limit {
		lines = lines[:limit]
	}
	for i, l := range lines {
		if isTableLine(l) {
			return strings.Join(lines[:i], "\n")
		}
	}
	return strings.Join(lines, "\n")
}

func isTableLine(line string) bool {
	for _, d := range tableDelimiters {
		n := 0
		for _, cell := range strings.Split(line, d) {
			if strings.TrimSpace(cell) != "" {
				n++
			}
		}
		if n >= MinTableCells {
			return true
		}
	}
	return false
}

func firstInRegistry(lower string) (models.Institution, bool) {
	for _, c := range registry {
		for _, m := range c.Markers {
			if strings.Contains(lower, strings.ToLower(m)) {
				return c.Institution, true
			}
		}
	}
	return "", false
}

func earliestMarker(lower string) (models.Institution, bool) {
	best, found := -1, models.Institution("")
	for _, c := range registry {
		for _, m := range c.Markers {
			idx := strings.Index(lower, strings.ToLower(m))
			if idx >= 0 && (best < 0 || idx < best) {
				best, found = idx, c.Institution
			}
		}
	}
	return found, best >= 0
}

// DecodeAuto decodes data as UTF-8, or as windows-1255 when it is not
// valid UTF-8. A leading byte order mark is dropped.
func DecodeAuto(data []byte) string {
	data = textutils.StripBOM(data)
	if utf8.Valid(data) {
		return string(data)
	}
	out, err := charmap.Windows1255.NewDecoder().Bytes(data)
	if err != nil {
		return string(bytes.ToValidUTF8(data, []byte("�")))
	}
	return string(out)
}

// Decode decodes data with the charset named by label (any WHATWG label,
// e.g. "windows-1255", "cp1255", "utf-8"). Valid UTF-8 input is returned
// unchanged whatever the label, since several issuers changed encodings
// over the years. Invalid UTF-8 under a UTF-8 or unknown label falls back
// to FallbackCodePage.
func Decode(data []byte, label string) (string, error) {
	data = textutils.StripBOM(data)
	if utf8.Valid(data) {
		return string(data), nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil || name == "utf-8" {
		return DecodeAuto(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ExtractCardNumber finds the last four card digits in text, then in the
// file name. It returns "" when none are found.
func ExtractCardNumber(inst models.Institution, text, filename string) string {
	cfg := Lookup(inst)
	for _, re := range cfg.CardPatterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return m[1]
		}
	}
	if !inst.IsCreditCard() {
		return ""
	}
	base := strings.ToLower(filepath.Base(filename))
	if m := filenameCardPattern.FindStringSubmatch(base); len(m) > 1 {
		return m[1]
	}
	return ""
}
