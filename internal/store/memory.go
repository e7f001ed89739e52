package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"offerbridge/internal/offer"
)

// MemoryStore is an IndexStore for tests and dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[offer.Key]IndexEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[offer.Key]IndexEntry), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key offer.Key) (IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return IndexEntry{}, ErrNotFound
	}
	e.Payload = e.Payload.Clone()
	return e, nil
}

func (s *MemoryStore) Put(_ context.Context, e IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[e.Key]; ok {
		if err := checkImmutable(existing, e); err != nil {
			return err
		}
	}
	e.Payload = e.Payload.Clone()
	e.UpdatedAt = s.now().UTC()
	s.entries[e.Key] = e
	return nil
}

func (s *MemoryStore) List(_ context.Context, projectID string) ([]IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []IndexEntry
	for k, e := range s.entries {
		if k.ProjectID == projectID {
			e.Payload = e.Payload.Clone()
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (s *MemoryStore) FindByPhoneHash(_ context.Context, hash string) ([]IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []IndexEntry
	for _, e := range s.entries {
		if slices.Contains(PhoneHashes(e.Payload), hash) {
			e.Payload = e.Payload.Clone()
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

func sortEntries(entries []IndexEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Key, entries[j].Key
		if a.ProjectID != b.ProjectID {
			return a.ProjectID < b.ProjectID
		}
		return a.ContractUnitNumber < b.ContractUnitNumber
	})
}
