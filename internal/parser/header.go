package parser

import (
	"strings"
	"unicode"
)

// NormalizeHeader turns a column title into lower_snake_case:
// "Buyer 1 First Name", "buyer1FirstName" and "BUYER-1 FIRST_NAME" all
// become "buyer_1_first_name". Punctuation separates words and is dropped.
func NormalizeHeader(h string) string {
	rs := []rune(strings.TrimSpace(h))
	var b strings.Builder
	b.Grow(len(rs) + 4)

	sep := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
			b.WriteByte('_')
		}
	}
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			sep()
			continue
		}
		if i > 0 && wordBoundary(rs, i) {
			sep()
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.Trim(b.String(), "_")
}

func wordBoundary(rs []rune, i int) bool {
	prev, cur := rs[i-1], rs[i]
	switch {
	case unicode.IsUpper(cur) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
		return true
	case unicode.IsUpper(cur) && unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
		return true
	case unicode.IsDigit(cur) && unicode.IsLetter(prev):
		return true
	}
	return false
}
