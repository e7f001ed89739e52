package search

import (
	"context"
	"fmt"
	"strings"

	"offerbridge/internal/store"
)

// Lister is the part of store.IndexStore the fallback needs.
type Lister interface {
	List(ctx context.Context, projectID string) ([]store.IndexEntry, error)
}

// StoreScan searches by scanning one project's index entries. It is slow
// but always available, so it backs Service while Meilisearch is down.
type StoreScan struct {
	store Lister
}

func NewStoreScan(s Lister) *StoreScan {
	return &StoreScan{store: s}
}

// Search matches every whitespace-separated term of q.Text, case-insensitively,
// against the searchable fields. Without a ProjectID there is nothing to scan.
func (s *StoreScan) Search(ctx context.Context, q Query) ([]Result, int, error) {
	if q.ProjectID == "" {
		return nil, 0, nil
	}
	entries, err := s.store.List(ctx, q.ProjectID)
	if err != nil {
		return nil, 0, fmt.Errorf("scan offer index: %w", err)
	}

	terms := strings.Fields(strings.ToLower(q.Text))
	var matched []Result
	for _, e := range entries {
		doc := NewOfferDocument(e)
		if !matchesAll(doc, terms) {
			continue
		}
		matched = append(matched, docToResult(doc))
	}

	total := len(matched)
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := max(q.Offset, 0)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func matchesAll(doc OfferDocument, terms []string) bool {
	for _, term := range terms {
		found := false
		for _, field := range searchableFields {
			if s, ok := doc[field].(string); ok && strings.Contains(strings.ToLower(s), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func docToResult(doc OfferDocument) Result {
	str := func(field string) string {
		s, _ := doc[field].(string)
		return s
	}
	r := Result{
		BuyerName:      str("buyer_name"),
		UnitName:       str("unit_name"),
		Status:         str("status"),
		UnitCollection: str("unit_collection"),
	}
	r.Key.ProjectID = str("project_id")
	r.Key.ContractUnitNumber = str("contract_unit_number")
	return r
}
