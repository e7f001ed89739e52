// Package coerce holds the total conversion primitives every source mapper
// runs raw values through. None of them fail: a value that cannot be
// converted is reported as absent (ok == false) and later dropped by StripEmpty.
package coerce

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

const isoDate = "2006-01-02"

var (
	isoPrefixRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	nonNumericRe  = regexp.MustCompile(`[^0-9.\-]`)
	usDateLayouts = []string{
		"1/2/2006",
		"1/2/06",
		"1-2-2006",
		"1/2/2006 15:04",
		"1/2/2006 15:04:05",
		"1/2/2006 3:04 PM",
		"1/2/2006 3:04:05 PM",
		"Jan 2, 2006",
		"January 2, 2006",
		"Jan 2 2006",
		"January 2 2006",
	}
)

// String trims v and reports it absent when nothing is left.
func String(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		if !finite(t) {
			return "", false
		}
	case float32:
		if !finite(float64(t)) {
			return "", false
		}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Number passes finite numbers through and otherwise parses the digits,
// dots and minus signs left after stripping everything else ("$1,250.00" -> 1250).
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case nil, bool:
		return 0, false
	case float64:
		return t, finite(t)
	case float32:
		return float64(t), finite(float64(t))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		f, err := cast.ToFloat64E(t)
		return f, err == nil
	}
	s, ok := String(v)
	if !ok {
		return 0, false
	}
	s = nonNumericRe.ReplaceAllString(s, "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) {
		return 0, false
	}
	return f, true
}

// Date returns the YYYY-MM-DD form of v. Values that already start with an
// ISO date are truncated, not reparsed, so a UTC offset can never shift the day.
func Date(v any) (string, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "", false
		}
		return t.Format(isoDate), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return "", false
		}
		return t.Format(isoDate), true
	case string:
		return parseDate(t)
	}
	return "", false
}

func parseDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	// An ISO prefix is already canonical; reparsing it could shift the day.
	if prefix := isoPrefixRe.FindString(s); prefix != "" {
		return prefix, true
	}
	for _, layout := range usDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate), true
		}
	}
	t, err := cast.StringToDate(s)
	if err != nil || t.IsZero() {
		return "", false
	}
	return t.Format(isoDate), true
}

// BoolString maps the usual yes/no spellings onto "true" and "false" and
// keeps anything else, lower-cased, so unrecognized flags survive for audit.
func BoolString(v any) (string, bool) {
	if b, ok := v.(bool); ok {
		return strconv.FormatBool(b), true
	}
	s, ok := String(v)
	if !ok {
		return "", false
	}
	s = strings.ToLower(s)
	switch s {
	case "y", "yes", "true", "1":
		return "true", true
	case "n", "no", "false", "0":
		return "false", true
	}
	return s, true
}

// StripEmpty returns a copy of r without nil, empty-string and NaN values.
func StripEmpty(r map[string]any) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		if IsEmpty(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// IsEmpty reports whether v would be removed by StripEmpty.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return math.IsNaN(t)
	case float32:
		return math.IsNaN(float64(t))
	}
	return false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
