package institution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"fjacquet/bank-ingest/internal/models"
)

func encode1255(t *testing.T, s string) []byte {
	t.Helper()
	out, err := charmap.Windows1255.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		filename string
		want     models.Institution
	}{
		{"isracard utf8", []byte("פירוט עסקאות ישראכרט\nתאריך,שם בית עסק,סכום"), "export.csv", models.InstitutionIsracard},
		{"amex before isracard", []byte("ישראכרט - אמריקן אקספרס"), "a.csv", models.InstitutionAmex},
		{"max", []byte("www.max.co.il\nתאריך עסקה"), "a.xlsx", models.InstitutionMax},
		{"max not leumi", []byte("לאומי קארד בע\"מ"), "a.csv", models.InstitutionMax},
		{"cal", []byte("Visa CAL statement"), "a.csv", models.InstitutionCal},
		{"leumi", []byte("בנק לאומי לישראל"), "a.csv", models.InstitutionLeumi},
		{"discount", []byte("Discount Bank"), "a.csv", models.InstitutionDiscount},
		{"mizrahi", []byte("בנק מזרחי טפחות"), "a.csv", models.InstitutionMizrahi},
		{"hapoalim windows-1255", encode1255(t, "בנק הפועלים - תנועות בחשבון"), "a.csv", models.InstitutionHapoalim},
		{"filename hint", []byte("date,desc,amount"), "Isracard_2024_03.csv", models.InstitutionIsracard},
		{"unknown", []byte("date,desc,amount"), "export.csv", models.InstitutionOther},
		{"bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("בנק דיסקונט")...), "a.csv", models.InstitutionDiscount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.data, tt.filename))
		})
	}
}

func TestDetect_BannerBeatsRowMentions(t *testing.T) {
	rows := "תאריך,תיאור,חובה,זכות\n01/01/24,משכורת,,100\n02/01/24,העברה,5,\n03/01/24,מכולת,7,\n04/01/24,חניה,3,\n05/01/24,ישראכרט,900,\n"
	assert.Equal(t, models.InstitutionLeumi, Detect([]byte("בנק לאומי לישראל\n"+rows), "export.csv"))

	newestFirst := "בנק לאומי - תנועות בחשבון\nתאריך,תיאור,חובה,זכות\n10/03/2024,ישראכרט,3250.00,\n06/03/2024,מכולת השכונה,80.00,\n"
	assert.Equal(t, models.InstitutionLeumi, DetectText(newestFirst, "export.csv"))

	noBanner := "תאריך,תיאור,חובה,זכות\n10/03/2024,ישראכרט,3250.00,\n"
	assert.Equal(t, models.InstitutionIsracard, DetectText(noBanner, "export.csv"))

	filler := "a\nb\nc\nd\ne\nf\n"
	assert.Equal(t, models.InstitutionLeumi, DetectText(filler+"בנק לאומי\nx\nישראכרט\n", "export.csv"))
	assert.Equal(t, models.InstitutionIsracard, DetectText(filler+"ישראכרט\nבנק לאומי\n", "export.csv"))
}

func TestDetect_Deterministic(t *testing.T) {
	data := []byte("בנק הפועלים ישראכרט")
	first := Detect(data, "x.csv")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Detect(data, "x.csv"))
	}
	assert.Equal(t, models.InstitutionIsracard, first)
}

func TestDecode(t *testing.T) {
	raw := encode1255(t, "שופרסל דיל")

	got, err := Decode(raw, "windows-1255")
	require.NoError(t, err)
	assert.Equal(t, "שופרסל דיל", got)

	got, err = Decode(raw, "cp1255")
	require.NoError(t, err)
	assert.Equal(t, "שופרסל דיל", got)

	got, err = Decode([]byte("plain utf8 ₪"), "windows-1255")
	require.NoError(t, err)
	assert.Equal(t, "plain utf8 ₪", got)

	got, err = Decode(raw, "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "שופרסל דיל", got)

	got, err = Decode(raw, "no-such-charset")
	require.NoError(t, err)
	assert.Equal(t, "שופרסל דיל", got)
}

func TestLookup(t *testing.T) {
	assert.True(t, Lookup(models.InstitutionHapoalim).PDF)
	assert.Equal(t, "windows-1255", Lookup(models.InstitutionLeumi).CodePage)
	assert.Equal(t, models.InstitutionOther, Lookup(models.Institution("X")).Institution)
	assert.Equal(t, FallbackCodePage, Lookup(models.InstitutionOther).CodePage)
	assert.Len(t, Registry(), len(models.AllInstitutions())-1)
}

func TestExtractCardNumber(t *testing.T) {
	tests := []struct {
		name     string
		inst     models.Institution
		text     string
		filename string
		want     string
	}{
		{"hebrew ending", models.InstitutionIsracard, "כרטיס ויזה המסתיים ב-4321", "a.xlsx", "4321"},
		{"english ending", models.InstitutionCal, "Card ending in 9876", "a.csv", "9876"},
		{"masked number", models.InstitutionMax, "כרטיס: 4580-****-****-1122", "a.xlsx", "1122"},
		{"filename", models.InstitutionMax, "no number here", "card_5566_march.xlsx", "5566"},
		{"bank has no card", models.InstitutionLeumi, "no number", "card_5566.csv", ""},
		{"none", models.InstitutionCal, "nothing", "export.csv", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCardNumber(tt.inst, tt.text, tt.filename))
		})
	}
}
