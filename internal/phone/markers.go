// Package phone derives one-way linkage markers from phone numbers so the
// non-PII index can answer "have we seen this number" without holding it.
package phone

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Markers are the index-safe fragments of a phone number. Area is empty for
// numbers shorter than ten digits.
type Markers struct {
	Hash  string `json:"hash"`
	Last4 string `json:"last4"`
	Area  string `json:"area,omitempty"`
}

// Digits strips everything but 0-9 from raw.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Derive returns the markers for raw, salted with salt. It reports false
// when raw holds no digits at all.
func Derive(raw, salt string) (Markers, bool) {
	digits := Digits(raw)
	if digits == "" {
		return Markers{}, false
	}
	sum := sha256.Sum256([]byte(salt + digits))
	m := Markers{Hash: hex.EncodeToString(sum[:])}
	if len(digits) > 4 {
		m.Last4 = digits[len(digits)-4:]
	} else {
		m.Last4 = digits
	}
	if len(digits) >= 10 {
		m.Area = digits[:3]
	}
	return m, true
}
