package aggregate

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/ikjoobang/xivix-best-map/internal/model"
)

// keyFolder collapses half-width/full-width variants and composed/
// decomposed hangul so provider spelling differences land on one key.
var keyFolder = transform.Chain(width.Fold, norm.NFC)

// listingKey builds the dedup key from the normalized name and address.
// A name that normalizes to nothing cannot form an identity.
func listingKey(l model.RawListing) (string, bool) {
	name := normalizeKeyPart(l.Name)
	if name == "" {
		return "", false
	}
	return name + "|" + normalizeKeyPart(l.Address), true
}

func normalizeKeyPart(s string) string {
	folded, _, err := transform.String(keyFolder, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
