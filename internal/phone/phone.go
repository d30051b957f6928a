// Package phone normalizes phone numbers to E.164 with an India default.
package phone

import "strings"

const countryPrefix = "91"

// Normalize converts free-form input into a +91 E.164 number. Formatting
// characters are stripped; inputs already carrying the 91 country code keep
// it, everything else is treated as a domestic number. Empty input stays
// empty.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	if strings.HasPrefix(digits, countryPrefix) && len(digits) >= 12 {
		return "+" + digits[:12]
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return "+" + countryPrefix + digits
}
