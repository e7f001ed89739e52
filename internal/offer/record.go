// Package offer defines the canonical offer record both source feeds map into.
package offer

import (
	"fmt"
	"strings"

	"offerbridge/internal/coerce"
)

// Record is a flat canonical offer keyed by canonical field name. Values are
// strings, float64s, bools or ints; absent fields are simply missing.
type Record map[string]any

// Key identifies one unit of one project.
type Key struct {
	ProjectID          string `json:"project_id"`
	ContractUnitNumber string `json:"contract_unit_number"`
}

// Valid reports whether both parts of the key are present.
func (k Key) Valid() bool {
	return strings.TrimSpace(k.ProjectID) != "" && strings.TrimSpace(k.ContractUnitNumber) != ""
}

func (k Key) String() string {
	return k.ProjectID + "/" + k.ContractUnitNumber
}

// Key returns the record's key; check Valid before using it.
func (r Record) Key() Key {
	return Key{
		ProjectID:          r.String(FieldProjectID),
		ContractUnitNumber: r.String(FieldContractUnitNumber),
	}
}

// String returns the trimmed string form of field, or "" when absent.
func (r Record) String(field string) string {
	s, _ := coerce.String(r[field])
	return s
}

// Number returns field as a float64.
func (r Record) Number(field string) (float64, bool) {
	return coerce.Number(r[field])
}

// IsImmutable reports whether the record is flagged as a closed sale.
func (r Record) IsImmutable() bool {
	n, ok := coerce.Number(r[FieldIsImmutable])
	if ok {
		return n == 1
	}
	b, _ := coerce.BoolString(r[FieldIsImmutable])
	return b == "true"
}

// Set stores value under field when ok is true; it is the usual sink for
// coerce results.
func (r Record) Set(field string, value any, ok bool) {
	if ok {
		r[field] = value
	}
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Normalize reads back a record decoded from JSON, where every number comes
// back as float64, and restores the int form of is_immutable.
func Normalize(r Record) Record {
	out := Record(coerce.StripEmpty(r))
	if v, ok := out[FieldIsImmutable]; ok {
		if n, ok := coerce.Number(v); ok {
			out[FieldIsImmutable] = int(n)
		}
	}
	return out
}

// RequireKey returns an error when the record cannot be addressed.
func RequireKey(r Record) (Key, error) {
	k := r.Key()
	if !k.Valid() {
		return Key{}, fmt.Errorf("record missing %s or %s", FieldProjectID, FieldContractUnitNumber)
	}
	return k, nil
}
