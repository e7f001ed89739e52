package store

import (
	"time"

	"offerbridge/internal/offer"
)

// IndexEntry is one row of the offer index: the sanitized, searchable
// projection of an offer plus the id of its full record in the vault.
type IndexEntry struct {
	Key         offer.Key    `json:"key"`
	Payload     offer.Record `json:"payload"`
	VaultID     string       `json:"vault_id"`
	IsImmutable bool         `json:"is_immutable"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
