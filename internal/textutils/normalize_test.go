package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Café & Bar", "cafe bar"},
		{"  Restaurants/Cafés  ", "restaurants cafes"},
		{"מַכֹּלֶת", "מכלת"},
		{"SUPER-PHARM  (TLV)", "super pharm tlv"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestTokenOverlap(t *testing.T) {
	assert.Equal(t, 1.0, TokenOverlap("Food Delivery", "food delivery"))
	assert.Equal(t, 0.5, TokenOverlap("food delivery", "food"))
	assert.InDelta(t, 1.0/3.0, TokenOverlap("car fuel station", "fuel"), 1e-9)
	assert.Equal(t, 0.0, TokenOverlap("", "food"))
	assert.Equal(t, 0.0, TokenOverlap("rent", "insurance"))
}

func TestHasNonLatinLetters(t *testing.T) {
	assert.True(t, HasNonLatinLetters("שופרסל דיל"))
	assert.True(t, HasNonLatinLetters("NETFLIX נטפליקס"))
	assert.False(t, HasNonLatinLetters("NETFLIX.COM 123"))
	assert.False(t, HasNonLatinLetters("Café"))
}

func TestStripBOM(t *testing.T) {
	assert.Equal(t, []byte("a,b"), StripBOM([]byte("\xEF\xBB\xBFa,b")))
	assert.Equal(t, []byte("a,b"), StripBOM([]byte("a,b")))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("Netflix.com", "NETFLIX"))
	assert.False(t, ContainsFold("Spotify", "netflix"))
}

func TestContainsTerm(t *testing.T) {
	tests := []struct {
		text, term string
		want       bool
	}{
		{"TEN GAS STATION", "ten", true},
		{"GLUTEN FREE BAKERY", "ten", false},
		{"KITTEN CARE CLINIC", "ten", false},
		{"העברה ב-BIT", "bit", true},
		{"ORBIT TRAVEL", "bit", false},
		{"פז חברת נפט", "פז", true},
		{"מפזר חום", "פז", false},
		{"רב-קו טעינה", "רב קו", true},
		{"APPLE.COM/BILL", "apple.com", true},
		{"SHUFERSALDEAL 12", "shufersal", true},
		{"anything", "  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsTerm(tt.text, tt.term))
		})
	}
}
