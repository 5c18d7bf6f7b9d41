package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
)

func sampleResults() []*models.ImportResult {
	return []*models.ImportResult{
		{
			File: "isracard.xlsx", Institution: models.InstitutionIsracard, CardNumber: "1234",
			RowCount: 10, SuccessCount: 9, SkippedRows: 1, Imported: 7, Duplicates: 2,
			CorrectedExisting: 1, Categorized: 6, MarkedRecurring: 1,
			Warnings: []string{"sign correction limit reached for transaction x"},
		},
		{
			File: "notes.docx", Institution: models.InstitutionOther,
			Errors: []string{"notes.docx: unsupported statement format"},
		},
		nil,
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResults())
	assert.Equal(t, Summary{
		Files: 2, Failed: 1, Imported: 7, Duplicates: 2, CorrectedExisting: 1,
		Categorized: 6, MarkedRecurring: 1, SkippedRows: 1,
	}, s)
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewGenerator(logging.NewMockLogger()).Generate(&buf, sampleResults(), FormatText))

	out := buf.String()
	assert.Contains(t, out, "isracard.xlsx")
	assert.Contains(t, out, "ISRACARD")
	assert.Contains(t, out, "error   notes.docx: notes.docx: unsupported statement format")
	assert.Contains(t, out, "warning isracard.xlsx: sign correction limit reached")
	assert.Contains(t, out, "2 file(s), 1 failed: 7 imported, 2 duplicates, 1 corrected, 6 categorized")
}

func TestGenerate_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewGenerator(nil).Generate(&buf, sampleResults()[:2], FormatJSON))

	var decoded struct {
		Summary Summary                `json:"summary"`
		Results []*models.ImportResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 7, decoded.Summary.Imported)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, "1234", decoded.Results[0].CardNumber)
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := NewGenerator(nil).Generate(&buf, nil, Format("xml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}
