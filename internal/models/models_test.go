package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstitutionKind(t *testing.T) {
	tests := []struct {
		inst Institution
		card bool
	}{
		{InstitutionIsracard, true},
		{InstitutionMax, true},
		{InstitutionCal, true},
		{InstitutionAmex, true},
		{InstitutionHapoalim, false},
		{InstitutionLeumi, false},
		{InstitutionOther, false},
		{Institution("NOPE"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.inst), func(t *testing.T) {
			assert.Equal(t, tt.card, tt.inst.IsCreditCard())
		})
	}
}

func TestParseInstitution(t *testing.T) {
	inst, err := ParseInstitution(" max ")
	require.NoError(t, err)
	assert.Equal(t, InstitutionMax, inst)

	_, err = ParseInstitution("bank of nowhere")
	assert.Error(t, err)

	assert.Len(t, AllInstitutions(), len(institutionKinds))
}

func TestDirection(t *testing.T) {
	assert.Equal(t, DirectionExpense, ParsedTransaction{Amount: decimal.NewFromInt(-5)}.Direction())
	assert.Equal(t, DirectionIncome, ParsedTransaction{Amount: decimal.NewFromInt(5)}.Direction())
}

func TestTransactionUpdate_IsEmpty(t *testing.T) {
	assert.True(t, TransactionUpdate{}.IsEmpty())
	yes := true
	assert.False(t, TransactionUpdate{IsRecurring: &yes}.IsEmpty())
	assert.False(t, TransactionUpdate{IncrementCorrections: true}.IsEmpty())
}

func TestResultFailed(t *testing.T) {
	p := &ParseResult{Errors: []string{"missing columns: date"}}
	assert.True(t, p.Failed())

	p.Transactions = []ParsedTransaction{{Description: "x", Amount: decimal.NewFromInt(1)}}
	assert.False(t, p.Failed())

	var r ImportResult
	r.FromParse(&ParseResult{Institution: InstitutionCal, RowCount: 3, Errors: []string{"bad"}})
	assert.Equal(t, InstitutionCal, r.Institution)
	assert.True(t, r.Failed())
}
