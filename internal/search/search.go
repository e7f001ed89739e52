// Package search projects offer index payloads into Meilisearch so
// operators can find offers by buyer name, unit or agent.
package search

import (
	"offerbridge/internal/offer"
	"offerbridge/internal/store"
)

// Result is a single search hit.
type Result struct {
	Key            offer.Key `json:"key"`
	BuyerName      string    `json:"buyer_name,omitempty"`
	UnitName       string    `json:"unit_name,omitempty"`
	Status         string    `json:"status,omitempty"`
	UnitCollection string    `json:"unit_collection,omitempty"`
	Snippet        string    `json:"snippet,omitempty"`
}

// Query describes a search request. ProjectID narrows the search to one
// project and is required by the store fallback.
type Query struct {
	Text      string
	ProjectID string
	Limit     int
	Offset    int
}

// Response is what Service.Search returns.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
	Backend string   `json:"backend"`
}

// OfferDocument is the shape pushed to the search index: the sanitized index
// payload plus the key fields and the vault id as document id.
type OfferDocument map[string]any

// NewOfferDocument builds the search document for an index entry.
func NewOfferDocument(e store.IndexEntry) OfferDocument {
	doc := make(OfferDocument, len(e.Payload)+3)
	for k, v := range e.Payload {
		doc[k] = v
	}
	doc["id"] = e.VaultID
	doc[offer.FieldProjectID] = e.Key.ProjectID
	doc[offer.FieldContractUnitNumber] = e.Key.ContractUnitNumber
	return doc
}

// searchableFields are matched by both backends, in ranking order.
var searchableFields = []string{
	offer.FieldBuyerName,
	offer.FieldContractUnitNumber,
	offer.FieldUnitName,
	offer.FieldSalesAgent,
	offer.FieldBrokerCompany,
	offer.FieldStatus,
	offer.FieldPlanName,
}

var filterableFields = []string{
	offer.FieldProjectID,
	offer.FieldStatusNumeric,
	offer.FieldIsImmutable,
	offer.FieldUnitCollection,
	offer.FieldUnitBuildingCode,
	offer.FieldPhoneHash,
}
