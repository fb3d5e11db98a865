// Package contact normalizes the phone numbers and e-mail addresses
// customers identify themselves with.
package contact

import (
	"regexp"
	"strings"
)

// Phone numbers must carry an area code: 10 to 13 digits covers local
// numbers with DDD up to the +55 international form.
const (
	minPhoneDigits = 10
	maxPhoneDigits = 13
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidPhone reports whether raw contains a usable phone number once every
// non-digit character is stripped. Empty input is invalid.
func ValidPhone(raw string) bool {
	_, ok := NormalizePhone(raw)
	return ok
}

// NormalizePhone strips every non-digit from raw and returns the digit
// string when its length is in [10,13].
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", false
	}
	return digits, true
}

// NormalizeEmail trims raw and returns it when it has the shape of an e-mail
// address. Case and domain validity beyond the shape are not checked, so the
// function is idempotent on its own output.
func NormalizeEmail(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if !emailRe.MatchString(trimmed) {
		return "", false
	}
	return trimmed, true
}

// Normalize resolves raw as a phone number first, then as an e-mail address.
func Normalize(raw string) (string, bool) {
	if phone, ok := NormalizePhone(raw); ok {
		return phone, true
	}
	return NormalizeEmail(raw)
}
