package merchant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignature(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"digits stripped", "SUPERMART 00123", "supermart"},
		{"two tokens kept", "NETFLIX.COM Amsterdam NL", "netflix com"},
		{"short tokens dropped", "AB SUPER PHARM 12 TLV", "super pharm"},
		{"hebrew", "שופרסל דיל 123 רמת גן", "שופרסל דיל"},
		{"diacritics", "Café Noir 44", "cafe noir"},
		{"only short tokens", "AM PM", ""},
		{"excluded", "12-34 / 5", ""},
		{"single letter", "X 0001", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Signature(tt.in))
		})
	}
}

func TestSameMerchant(t *testing.T) {
	assert.True(t, SameMerchant("SUPERMART 00123", "SUPERMART 00456"))
	assert.True(t, SameMerchant("supermart #9", "SuperMart 10"))
	assert.False(t, SameMerchant("SUPERMART 00123", "HYPERMART 00123"))
	assert.False(t, SameMerchant("123", "456"), "excluded descriptions never match")
	assert.False(t, SameMerchant("AM PM", "AM PM"))
}

func TestGroup(t *testing.T) {
	groups := Group([]string{"SUPERMART 00123", "SUPERMART 00456", "CINEMA CITY 7", "99"})
	assert.Len(t, groups, 2)
	assert.Len(t, groups["supermart"], 2)
}
