// Package partition splits a canonical offer record into the searchable
// index payload and the full vault payload.
//
// The index payload is a lossy projection built for lookups and search. It
// never carries a value a reader could turn back into buyer PII; phone
// numbers only reach it as one-way markers. The vault payload is the system
// of record and keeps every field exactly as mapped.
package partition

import (
	"fmt"
	"strings"

	"offerbridge/internal/coerce"
	"offerbridge/internal/offer"
	"offerbridge/internal/phone"
)

// phoneSlots are the buyer phone fields that get positional markers in the
// index, in slot order.
var phoneSlots = []string{
	offer.FieldBuyer1Phone,
	offer.FieldBuyer1Mobile,
	offer.FieldBuyer2Phone,
}

// Payload is one record split across the two storage tiers.
type Payload struct {
	Index offer.Record `json:"index"`
	Vault offer.Record `json:"vault"`
}

// Partitioner routes fields per its table. Salt feeds the positional phone
// markers and must match the salt used by the mappers for linkage to work.
type Partitioner struct {
	Routes RoutingTable
	Salt   string
}

// New returns a partitioner over DefaultRoutes.
func New(salt string) *Partitioner {
	return &Partitioner{Routes: DefaultRoutes, Salt: salt}
}

// Split partitions r. The input is not modified.
func (p *Partitioner) Split(r offer.Record) Payload {
	routes := p.Routes
	if routes == nil {
		routes = DefaultRoutes
	}

	out := Payload{Index: offer.Record{}, Vault: offer.Record{}}
	for field, v := range r {
		switch routes.Route(field) {
		case IndexOnly:
			p.index(out.Index, field, v)
		case Both:
			out.Vault[field] = v
			p.index(out.Index, field, v)
		default:
			out.Vault[field] = v
		}
	}

	if name, ok := buyerName(r); ok {
		out.Index[offer.FieldBuyerName] = strings.ToLower(name)
	}
	for i, field := range phoneSlots {
		raw, ok := coerce.String(r[field])
		if !ok {
			continue
		}
		m, ok := phone.Derive(raw, p.Salt)
		if !ok {
			continue
		}
		n := i + 1
		out.Index[slotField(n, "hash")] = m.Hash
		out.Index[slotField(n, "last4")] = m.Last4
		if m.Area != "" {
			out.Index[slotField(n, "area")] = m.Area
		}
	}
	return out
}

func (p *Partitioner) index(dst offer.Record, field string, v any) {
	if s, ok := Sanitize(field, v); ok {
		dst[field] = s
	}
}

// Sanitize returns the index form of one field value. Money fields become
// numbers, phone fields become bare digits and other strings are trimmed and
// lower-cased. ok is false when nothing usable is left.
func Sanitize(field string, v any) (any, bool) {
	name := strings.ToLower(field)
	switch {
	case isMoneyField(name):
		return coerce.Number(v)
	case strings.HasSuffix(name, "_hash"):
		return coerce.String(v)
	case strings.Contains(name, "phone"):
		s, ok := coerce.String(v)
		if !ok {
			return nil, false
		}
		digits := phone.Digits(s)
		return digits, digits != ""
	}

	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		s, ok := coerce.String(t)
		if !ok {
			return nil, false
		}
		return strings.ToLower(s), true
	default:
		return v, true
	}
}

func isMoneyField(name string) bool {
	return strings.Contains(name, "price") ||
		strings.Contains(name, "amount") ||
		strings.Contains(name, "credit")
}

// buyerName prefers an explicit display name and falls back to the primary
// buyer's full name.
func buyerName(r offer.Record) (string, bool) {
	for _, field := range []string{offer.FieldBuyerName, offer.FieldBuyerDisplayName, offer.FieldBuyer1FullName} {
		if s, ok := coerce.String(r[field]); ok {
			return s, true
		}
	}
	return "", false
}

func slotField(n int, suffix string) string {
	return fmt.Sprintf("phone_%d_%s", n, suffix)
}
