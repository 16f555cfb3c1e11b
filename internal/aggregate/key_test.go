package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"

	"github.com/ikjoobang/xivix-best-map/internal/model"
)

func TestNormalizeKeyPart(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Blue Bottle", "bluebottle"},
		{"whitespace stripped", " 커피 한약방\t", "커피한약방"},
		{"full width folded", "ＣＡＦＥ　ＭＯＯＮ", "cafemoon"},
		{"half width katakana folded", "ｶﾌｪ", "カフェ"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeKeyPart(tt.in))
		})
	}
}

func TestNormalizeKeyPart_HangulFormsCollide(t *testing.T) {
	composed := "스타벅스 망원점"
	decomposed := norm.NFD.String(composed)

	// Sanity: the two encodings differ byte-wise before normalization.
	assert.NotEqual(t, composed, decomposed)
	assert.Equal(t, normalizeKeyPart(composed), normalizeKeyPart(decomposed))
}

func TestListingKey(t *testing.T) {
	l := model.RawListing{Name: "온화 상점", Address: "서울 마포구 망원로 11"}
	key, ok := listingKey(l)
	assert.True(t, ok)
	assert.Equal(t, "온화상점|서울마포구망원로11", key)

	_, ok = listingKey(model.RawListing{Name: " ", Address: "서울"})
	assert.False(t, ok)
}
