package aggregate

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Provider phone strings arrive in assorted Korean local formats.
const phoneRegion = "KR"

// normalizePhone formats a number to E.164, keeping the trimmed input when
// it does not parse as a valid Korean number.
func normalizePhone(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	num, err := phonenumbers.Parse(trimmed, phoneRegion)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(num) {
		return trimmed
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
