// Package store keeps the offer index: one sanitized payload per
// (project, unit) key, backed by Postgres, Redis or memory.
package store

import (
	"context"
	"errors"

	"offerbridge/internal/offer"
)

var (
	ErrNotFound = errors.New("offer not found")
	// ErrImmutable is returned when a write would turn a closed-sale row
	// back into an open one.
	ErrImmutable = errors.New("offer is immutable")
)

// IndexStore is implemented by every index backend. Put inserts or
// replaces the entry for e.Key.
type IndexStore interface {
	Get(ctx context.Context, key offer.Key) (IndexEntry, error)
	Put(ctx context.Context, e IndexEntry) error
	List(ctx context.Context, projectID string) ([]IndexEntry, error)
	FindByPhoneHash(ctx context.Context, hash string) ([]IndexEntry, error)
	Close() error
}

func checkImmutable(existing, next IndexEntry) error {
	if existing.IsImmutable && !next.IsImmutable {
		return ErrImmutable
	}
	return nil
}

// PhoneHashes returns the phone marker hashes carried by an index payload.
func PhoneHashes(payload offer.Record) []string {
	var out []string
	for _, field := range []string{offer.FieldPhoneHash, "phone_1_hash", "phone_2_hash", "phone_3_hash"} {
		if h := payload.String(field); h != "" {
			out = append(out, h)
		}
	}
	return out
}
