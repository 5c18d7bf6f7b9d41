// Package institution recognizes which issuer produced a statement file and
// holds the per-issuer settings the parsers need.
package institution

import (
	"regexp"

	"fjacquet/bank-ingest/internal/models"
)

// Config describes one supported issuer.
type Config struct {
	Institution models.Institution
	// CodePage is the charset label used for delimited exports.
	CodePage string
	// Markers are matched case-insensitively against decoded content.
	Markers []string
	// FilenameHints are matched against the lower-cased file name when no
	// content marker matched.
	FilenameHints []string
	// CardPatterns capture the last four card digits in group 1.
	CardPatterns []*regexp.Regexp
	// PDF is set when a PDF statement layout is supported.
	PDF bool
}

var cardLabelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:המסתיים|מסתיים|שמספרו)\s*(?:ב[-־]?|ב\s*)?\s*(\d{4})\b`),
	regexp.MustCompile(`(?i)card\s*(?:no\.?|number|ending(?:\s+in)?)?\s*[:#]?\s*(?:[x*\d]{4}[\s-]?){0,3}(\d{4})\b`),
	regexp.MustCompile(`כרטיס\s*(?:מספר|מס['׳]?)?\s*:?\s*(?:[x*\d]{4}[\s-]?){0,3}(\d{4})\b`),
}

// registry is ordered: the first issuer whose marker matches wins, so more
// specific markers come before markers they contain.
var registry = []Config{
	{
		Institution:   models.InstitutionAmex,
		CodePage:      "windows-1255",
		Markers:       []string{"אמריקן אקספרס", "american express", "americanexpress.co.il"},
		FilenameHints: []string{"amex"},
		CardPatterns:  cardLabelPatterns,
	},
	{
		Institution:   models.InstitutionIsracard,
		CodePage:      "windows-1255",
		Markers:       []string{"ישראכרט", "isracard", "digital.isracard.co.il"},
		FilenameHints: []string{"isracard"},
		CardPatterns:  cardLabelPatterns,
	},
	{
		Institution:   models.InstitutionMax,
		CodePage:      "utf-8",
		Markers:       []string{"max.co.il", "מקס איט פיננסים", "לאומי קארד", "leumi card"},
		FilenameHints: []string{"transaction-details_export", "max_"},
		CardPatterns:  cardLabelPatterns,
	},
	{
		Institution:   models.InstitutionCal,
		CodePage:      "utf-8",
		Markers:       []string{"cal-online.co.il", "כרטיסי אשראי לישראל", "כ.א.ל", "visa cal"},
		FilenameHints: []string{"cal_", "visa-cal"},
		CardPatterns:  cardLabelPatterns,
	},
	{
		Institution:   models.InstitutionHapoalim,
		CodePage:      "windows-1255",
		Markers:       []string{"בנק הפועלים", "bankhapoalim", "bank hapoalim"},
		FilenameHints: []string{"hapoalim", "poalim"},
		PDF:           true,
	},
	{
		Institution:   models.InstitutionLeumi,
		CodePage:      "windows-1255",
		Markers:       []string{"בנק לאומי", "bank leumi", "leumi.co.il"},
		FilenameHints: []string{"leumi"},
	},
	{
		Institution:   models.InstitutionDiscount,
		CodePage:      "windows-1255",
		Markers:       []string{"בנק דיסקונט", "discount bank", "discountbank"},
		FilenameHints: []string{"discount"},
	},
	{
		Institution:   models.InstitutionMizrahi,
		CodePage:      "windows-1255",
		Markers:       []string{"מזרחי טפחות", "mizrahi tefahot", "mizrahi-tefahot"},
		FilenameHints: []string{"mizrahi"},
	},
}

var otherConfig = Config{Institution: models.InstitutionOther, CodePage: FallbackCodePage}

// Lookup returns the settings for inst. Unknown institutions get the
// generic OTHER settings.
func Lookup(inst models.Institution) Config {
	for _, c := range registry {
		if c.Institution == inst {
			return c
		}
	}
	return otherConfig
}

// Registry returns the ordered issuer table.
func Registry() []Config {
	out := make([]Config, len(registry))
	copy(out, registry)
	return out
}
