package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "0"},
		{"123.45", "123.45"},
		{"1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"12,5", "12.5"},
		{"1,234", "1234"},
		{"₪ 89.90", "89.9"},
		{"89.90 ש\"ח", "89.9"},
		{"-45.00", "-45"},
		{"45.00-", "-45"},
		{"(45.00)", "-45"},
		{"$ 12.00", "12"},
		{"USD 7.5", "7.5"},
		{"+300", "300"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	_, err := ParseAmount("abc")
	assert.Error(t, err)
}

func TestIsAmountShaped(t *testing.T) {
	for _, s := range []string{"12.50", "-1,234.00", "₪ 40", "(99.90)", "1234"} {
		assert.True(t, IsAmountShaped(s), s)
	}
	for _, s := range []string{"", "01/02/2024", "שופרסל דיל", "12.345.678,9x"} {
		assert.False(t, IsAmountShaped(s), s)
	}
}

func TestCurrencyOf(t *testing.T) {
	assert.Equal(t, "USD", CurrencyOf("USD"))
	assert.Equal(t, "USD", CurrencyOf("$ 12.00"))
	assert.Equal(t, "EUR", CurrencyOf("€"))
	assert.Equal(t, "ILS", CurrencyOf("NIS"))
	assert.Equal(t, "ILS", CurrencyOf("ש\"ח"))
	assert.Equal(t, "", CurrencyOf("12.00"))
}
