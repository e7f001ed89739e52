// Package mapper turns raw rows from the two offer feeds into canonical
// offer records. Field lookups go through ordered alias chains: the first
// alias holding a non-empty value wins, so the order of each chain encodes
// which upstream system takes precedence.
package mapper

import (
	"strings"

	"offerbridge/internal/coerce"
	"offerbridge/internal/offer"
)

// Skip reasons returned by the mappers.
const (
	ReasonMissingKey     = "missing_project_or_unit"
	ReasonFusionFiltered = "fusion_project_filtered"
)

// Result is the outcome of mapping one row. Mapped is nil when Skip is set.
type Result struct {
	Skip   bool
	Reason string
	Mapped offer.Record
}

func skip(reason string) Result {
	return Result{Skip: true, Reason: reason}
}

// Row is one raw source row. Keys vary per source and sometimes per row.
type Row map[string]any

// Get returns the value stored under name. An exact key match wins; after
// that the row is searched for a key that matches once case, spaces,
// underscores and hyphens are ignored.
func (r Row) Get(name string) (any, bool) {
	if v, ok := r[name]; ok {
		return v, true
	}
	want := normalizeKey(name)
	found := ""
	for k := range r {
		if normalizeKey(k) != want {
			continue
		}
		// Several spellings of one column: pick deterministically.
		if found == "" || k < found {
			found = k
		}
	}
	if found == "" {
		return nil, false
	}
	return r[found], true
}

// First returns the first alias whose value is non-empty after trimming.
func (r Row) First(aliases ...string) any {
	for _, alias := range aliases {
		v, ok := r.Get(alias)
		if !ok {
			continue
		}
		if _, ok := coerce.String(v); ok {
			return v
		}
	}
	return nil
}

// FirstString is First followed by coerce.String.
func (r Row) FirstString(aliases ...string) (string, bool) {
	return coerce.String(r.First(aliases...))
}

func normalizeKey(k string) string {
	s := strings.ToLower(strings.TrimSpace(k))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}
