package search

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"

	"offerbridge/internal/logging"
	"offerbridge/internal/offer"
)

const idxOffers = "offerbridge_offers"

// Meili indexes and searches offers in Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures the offers index.
// An unreachable server is not an error: the client starts unhealthy and a
// background loop picks it up when it comes back.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		logging.Default().Warn().Err(err).Str("url", url).Msg("meilisearch unavailable")
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	log := logging.Default()
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxOffers,
		PrimaryKey: "id",
	}); err != nil {
		log.Debug().Err(err).Str("index", idxOffers).Msg("create index (may already exist)")
	}

	index := m.client.Index(idxOffers)
	filterable := make([]interface{}, len(filterableFields))
	for i, v := range filterableFields {
		filterable[i] = v
	}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Warn().Err(err).Str("index", idxOffers).Msg("update filterable attributes")
	}
	searchable := append([]string(nil), searchableFields...)
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Warn().Err(err).Str("index", idxOffers).Msg("update searchable attributes")
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				logging.Default().Info().Msg("meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search runs q against the offers index.
func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}
	sr := &meili.SearchRequest{
		IndexUID:              idxOffers,
		Query:                 q.Text,
		Limit:                 limit,
		Offset:                int64(q.Offset),
		AttributesToHighlight: []string{offer.FieldBuyerName, offer.FieldUnitName},
		HighlightPreTag:       "<mark>",
		HighlightPostTag:      "</mark>",
	}
	if q.ProjectID != "" {
		sr.Filter = []string{fmt.Sprintf("%s = %q", offer.FieldProjectID, q.ProjectID)}
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{
		Queries: []*meili.SearchRequest{sr},
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch search: %w", err)
	}

	var results []Result
	total := 0
	for _, res := range resp.Results {
		total += int(res.EstimatedTotalHits)
		for _, hit := range res.Hits {
			results = append(results, hitToResult(hit))
		}
	}
	return results, total, nil
}

func hitToResult(hit meili.Hit) Result {
	return Result{
		Key: offer.Key{
			ProjectID:          decodeString(hit, offer.FieldProjectID),
			ContractUnitNumber: decodeString(hit, offer.FieldContractUnitNumber),
		},
		BuyerName:      decodeString(hit, offer.FieldBuyerName),
		UnitName:       decodeString(hit, offer.FieldUnitName),
		Status:         decodeString(hit, offer.FieldStatus),
		UnitCollection: decodeString(hit, offer.FieldUnitCollection),
		Snippet: firstNonBlank(
			decodeFormattedString(hit, offer.FieldBuyerName),
			decodeFormattedString(hit, offer.FieldUnitName),
		),
	}
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]any
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	s, _ := formatted[key].(string)
	return strings.TrimSpace(s)
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// IndexOffers adds or replaces offer documents.
func (m *Meili) IndexOffers(docs []OfferDocument) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := m.client.Index(idxOffers).AddDocuments(docs, nil)
	return err
}
