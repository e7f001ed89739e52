package search

import (
	"context"
	"sync"

	"offerbridge/internal/logging"
	"offerbridge/internal/store"
)

// Service tries Meilisearch first and falls back to scanning the index
// store. Indexing is fire-and-forget; Close waits for in-flight pushes.
type Service struct {
	meili    *Meili
	fallback *StoreScan
	wg       sync.WaitGroup
}

// NewService creates a search service. meili may be nil when Meilisearch is
// not configured.
func NewService(meili *Meili, fallback *StoreScan) *Service {
	return &Service{meili: meili, fallback: fallback}
}

func (s *Service) Search(ctx context.Context, q Query) Response {
	log := logging.FromContext(ctx)
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text, Backend: "meilisearch"}
		}
		log.Warn().Err(err).Msg("meilisearch error, falling back to store scan")
	}

	if s.fallback == nil {
		return Response{Results: []Result{}, Query: q.Text, Backend: "none"}
	}
	results, total, err := s.fallback.Search(ctx, q)
	if err != nil {
		log.Error().Err(err).Msg("store scan search failed")
		return Response{Results: []Result{}, Query: q.Text, Backend: "store"}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text, Backend: "store"}
}

// IndexOffer pushes one index entry to Meilisearch in the background.
func (s *Service) IndexOffer(e store.IndexEntry) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	doc := NewOfferDocument(e)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.meili.IndexOffers([]OfferDocument{doc}); err != nil {
			logging.KeyFields(logging.Default().Warn().Err(err), e.Key).Msg("index offer")
		}
	}()
}

// Reindex pushes every entry of one project from the store to Meilisearch.
func (s *Service) Reindex(ctx context.Context, src Lister, projectID string) (int, error) {
	if s.meili == nil || !s.meili.Healthy() {
		return 0, nil
	}
	entries, err := src.List(ctx, projectID)
	if err != nil {
		return 0, err
	}
	docs := make([]OfferDocument, len(entries))
	for i, e := range entries {
		docs[i] = NewOfferDocument(e)
	}
	if err := s.meili.IndexOffers(docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Close waits for background indexing and stops the health monitor.
func (s *Service) Close() {
	s.wg.Wait()
	if s.meili != nil {
		s.meili.Close()
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
