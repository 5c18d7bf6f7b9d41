// Package columns maps the headers of a tabular statement to transaction
// fields, by header name first and by cell content second.
package columns

import "regexp"

// Field is a semantic transaction field.
type Field string

const (
	FieldValueDate        Field = "value_date"
	FieldOriginalAmount   Field = "original_amount"
	FieldOriginalCurrency Field = "original_currency"
	FieldDate             Field = "date"
	FieldReference        Field = "reference"
	FieldDebit            Field = "debit"
	FieldCredit           Field = "credit"
	FieldDescription      Field = "description"
	FieldAmount           Field = "amount"
)

// Pass records how a field was resolved.
type Pass string

const (
	PassHeader  Pass = "header"
	PassContent Pass = "content"
)

type fieldPatterns struct {
	field    Field
	patterns []*regexp.Regexp
}

func rx(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// headerPatterns is evaluated in order. Fields whose headers contain the
// words of a more generic field (value date vs date, original amount vs
// amount) are listed first so they claim their header before it.
var headerPatterns = []fieldPatterns{
	{FieldValueDate, rx(`תאריך\s*ערך`, `value\s*date`, `תאריך\s*חיוב`, `billing\s*date`, `posting\s*date`)},
	{FieldOriginalAmount, rx(`סכום\s*(ה)?עסקה\s*(ה)?מקורי`, `סכום\s*מקורי`, `סכום\s*(ה)?עסקה`, `original\s*amount`, `transaction\s*amount`)},
	{FieldOriginalCurrency, rx(`מטבע\s*(ה)?עסקה`, `מטבע\s*מקור`, `original\s*currency`, `^currency$`)},
	{FieldDate, rx(`תאריך\s*(ה)?עסקה`, `תאריך\s*רכישה`, `^\s*תאריך\s*$`, `transaction\s*date`, `purchase\s*date`, `^\s*date\s*$`, `תאריך`, `date`)},
	{FieldReference, rx(`אסמכתא`, `מספר\s*שובר`, `שובר`, `reference`, `^ref\.?$`, `voucher`, `confirmation`)},
	{FieldDebit, rx(`^\s*(ב)?חובה\s*$`, `^\s*debit\s*$`, `withdrawal`, `חובה`, `debit`)},
	{FieldCredit, rx(`^\s*(ב)?זכות\s*$`, `^\s*credit\s*$`, `deposit`, `זכות`, `credit`)},
	{FieldDescription, rx(`שם\s*בית\s*(ה)?עסק`, `בית\s*עסק`, `תיאור`, `פרטים`, `הפעולה`, `merchant\s*name`, `merchant`, `transaction\s*details`, `description`, `details`, `payee`, `narrative`)},
	{FieldAmount, rx(`סכום\s*(ה)?חיוב`, `סכום\s*לחיוב`, `סכום`, `^\s*amount\s*$`, `charge\s*amount`, `amount`, `^\s*sum\s*$`)},
}

// FieldOrder lists every field in resolution order.
func FieldOrder() []Field {
	out := make([]Field, len(headerPatterns))
	for i, fp := range headerPatterns {
		out[i] = fp.field
	}
	return out
}
