// Package reconcile merges mapped offer records into stored state.
//
// Per key the engine runs a small state machine: look up the stored record,
// refuse to touch a closed sale unless the incoming row is itself closed,
// drop the key fields and empty values, then write the union of stored and
// incoming fields. Fields missing from a later, sparser row are never
// cleared, so re-running the same import converges on the same state.
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"offerbridge/internal/offer"
)

// Skip reasons reported in Outcome.Reason.
const (
	ReasonMissingKey        = "missing_project_or_unit"
	ReasonImmutableExisting = "immutable_existing"
	ReasonNoFieldsToUpdate  = "no_fields_to_update"
)

// Repository is the record store the engine reads and writes. Put must be
// all-or-nothing for one record.
type Repository interface {
	Get(ctx context.Context, key offer.Key) (offer.Record, bool, error)
	Put(ctx context.Context, key offer.Key, rec offer.Record) error
}

// Outcome describes what Apply did with one record.
type Outcome struct {
	Key      offer.Key
	Written  bool
	Inserted bool
	Reason   string
}

// Skipped reports whether the record was rejected without a write.
func (o Outcome) Skipped() bool {
	return !o.Written
}

// Engine applies incoming records to a Repository. It is safe for concurrent
// use only across distinct keys; see KeyLocker.
type Engine struct {
	repo Repository
}

func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// Apply reconciles one incoming record. Business-rule rejections come back
// as a skipped Outcome; only repository failures are returned as errors.
func (e *Engine) Apply(ctx context.Context, incoming offer.Record) (Outcome, error) {
	key := incoming.Key()
	out := Outcome{Key: key}
	if !key.Valid() {
		out.Reason = ReasonMissingKey
		return out, nil
	}

	existing, found, err := e.repo.Get(ctx, key)
	if err != nil {
		return out, fmt.Errorf("get offer %s: %w", key, err)
	}

	if found && existing.IsImmutable() && !incoming.IsImmutable() {
		out.Reason = ReasonImmutableExisting
		return out, nil
	}

	updates := Updates(incoming)
	if len(updates) == 0 {
		out.Reason = ReasonNoFieldsToUpdate
		return out, nil
	}

	merged := Merge(existing, key, updates)
	if err := e.repo.Put(ctx, key, merged); err != nil {
		return out, fmt.Errorf("put offer %s: %w", key, err)
	}
	out.Written = true
	out.Inserted = !found
	return out, nil
}

// Updates returns the writable fields of rec: everything present and
// non-empty except the two key fields. Blank strings count as empty.
func Updates(rec offer.Record) offer.Record {
	updates := offer.Normalize(rec)
	delete(updates, offer.FieldProjectID)
	delete(updates, offer.FieldContractUnitNumber)
	for field, v := range updates {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			delete(updates, field)
		}
	}
	return updates
}

// Merge overlays updates on a copy of existing. Fields not in updates keep
// their stored value.
func Merge(existing offer.Record, key offer.Key, updates offer.Record) offer.Record {
	merged := existing.Clone()
	for field, v := range updates {
		merged[field] = v
	}
	merged[offer.FieldProjectID] = key.ProjectID
	merged[offer.FieldContractUnitNumber] = key.ContractUnitNumber
	return merged
}
