package app

import (
	"context"
	"errors"
	"fmt"

	"offerbridge/internal/offer"
	"offerbridge/internal/partition"
	"offerbridge/internal/store"
	"offerbridge/internal/vault"
)

// Indexer receives every committed index entry. search.Service satisfies it.
type Indexer interface {
	IndexOffer(e store.IndexEntry)
}

// OfferRepository stores each offer across the vault and the index. It
// implements reconcile.Repository.
//
// Put writes the vault blob first and the index row second. The index row
// is the commit point: a crash in between leaves an orphan blob that the
// next write of the same key overwrites, never an index row without a blob.
type OfferRepository struct {
	index       store.IndexStore
	vault       vault.Store
	partitioner *partition.Partitioner
	indexer     Indexer
}

func NewOfferRepository(index store.IndexStore, v vault.Store, p *partition.Partitioner, indexer Indexer) *OfferRepository {
	return &OfferRepository{index: index, vault: v, partitioner: p, indexer: indexer}
}

// Get returns the full stored record for key.
func (r *OfferRepository) Get(ctx context.Context, key offer.Key) (offer.Record, bool, error) {
	entry, err := r.index.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get index entry: %w", err)
	}
	rec, err := r.vault.Get(ctx, entry.VaultID)
	if errors.Is(err, vault.ErrNotFound) {
		return nil, false, fmt.Errorf("%w: vault blob %s missing for %s", ErrMalformedState, entry.VaultID, key)
	}
	if err != nil {
		return nil, false, fmt.Errorf("get vault blob: %w", err)
	}
	return offer.Normalize(rec), true, nil
}

// Put partitions rec and writes both tiers.
func (r *OfferRepository) Put(ctx context.Context, key offer.Key, rec offer.Record) error {
	payload := r.partitioner.Split(rec)
	id := vault.ID(key)
	if err := r.vault.Put(ctx, id, payload.Vault); err != nil {
		return fmt.Errorf("put vault blob: %w", err)
	}

	entry := store.IndexEntry{
		Key:         key,
		Payload:     payload.Index,
		VaultID:     id,
		IsImmutable: rec.IsImmutable(),
	}
	if err := r.index.Put(ctx, entry); err != nil {
		return fmt.Errorf("put index entry: %w", err)
	}
	if r.indexer != nil {
		r.indexer.IndexOffer(entry)
	}
	return nil
}
