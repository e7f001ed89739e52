package vault

import (
	"bytes"
	"context"
	"sync"

	"offerbridge/internal/offer"
)

// MemoryStore keeps encoded blobs in memory, sealed when a Sealer is set.
type MemoryStore struct {
	codec codec
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore(sealer *Sealer) *MemoryStore {
	return &MemoryStore{codec: codec{sealer: sealer}, blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, id string, payload offer.Record) error {
	blob, err := s.codec.encode(payload)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id] = blob
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (offer.Record, error) {
	s.mu.RLock()
	blob, ok := s.blobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.codec.decode(blob)
}

// Raw returns the stored bytes for id.
func (s *MemoryStore) Raw(id string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bytes.Clone(s.blobs[id])
}
