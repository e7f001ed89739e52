package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offerbridge/internal/config"
	"offerbridge/internal/mapper"
	"offerbridge/internal/offer"
	"offerbridge/internal/reconcile"
	"offerbridge/internal/search"
	"offerbridge/internal/store"
	"offerbridge/internal/vault"
)

const weeklyReport = `Project,Unit Number,Unit Name,Buyer 1 First Name,Buyer 1 Last Name,Phone,Status,Base Price
SoMi Hayward,214,HayPark 214,Ann,Lee,(415) 555-1234,In Escrow,"$815,000"
Fusion,101,,Cy,Diaz,,Pending,
Vista,8,,Bo,Park,,Closed,
,5,,Di,Ng,,Pending,
`

type testEnv struct {
	svc   *Service
	index *store.MemoryStore
	vault *vault.MemoryStore
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	index := store.NewMemoryStore()
	v := vault.NewMemoryStore(nil)
	cfg := config.Config{PhoneHashSalt: "pepper", ImportWorkers: 2, ImportContinueOnError: true}
	return testEnv{
		svc:   NewService(cfg, Deps{Index: index, Vault: v}),
		index: index,
		vault: v,
	}
}

func TestImportSecondary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.ImportSecondary(ctx, strings.NewReader(weeklyReport), "2024-06-01", nil)
	require.NoError(t, err)
	assert.Equal(t, "utf-8", res.Encoding)
	assert.Equal(t, 4, res.Rows)
	assert.Equal(t, 4, res.Stats.Processed)
	assert.Equal(t, 2, res.Stats.Inserted)
	assert.Equal(t, 2, res.Stats.Skipped)
	assert.Equal(t, 1, res.Stats.Reasons[mapper.ReasonFusionFiltered])
	assert.Equal(t, 1, res.Stats.Reasons[mapper.ReasonMissingKey])

	view, err := env.svc.Show(ctx, offer.Key{ProjectID: "SoMi B", ContractUnitNumber: "214"}, true)
	require.NoError(t, err)
	assert.Equal(t, vault.ID(view.Index.Key), view.Index.VaultID)
	assert.Equal(t, "ann lee", view.Index.Payload[offer.FieldBuyerName])
	assert.Equal(t, 815000.0, view.Index.Payload[offer.FieldBasePrice])
	assert.NotContains(t, view.Index.Payload, offer.FieldBuyer1FirstName)
	assert.Equal(t, "Ann", view.Vault[offer.FieldBuyer1FirstName])
	assert.Equal(t, "2024-06-01", view.Vault[offer.FieldReportDate])
	assert.False(t, view.Index.IsImmutable)

	closed, err := env.svc.Show(ctx, offer.Key{ProjectID: "Vista", ContractUnitNumber: "8"}, false)
	require.NoError(t, err)
	assert.True(t, closed.Index.IsImmutable)
	assert.Nil(t, closed.Vault)
}

func TestImportSecondaryIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	key := offer.Key{ProjectID: "SoMi B", ContractUnitNumber: "214"}

	_, err := env.svc.ImportSecondary(ctx, strings.NewReader(weeklyReport), "2024-06-01", nil)
	require.NoError(t, err)
	first, err := env.svc.Show(ctx, key, true)
	require.NoError(t, err)

	res, err := env.svc.ImportSecondary(ctx, strings.NewReader(weeklyReport), "2024-06-01", nil)
	require.NoError(t, err)
	assert.Zero(t, res.Stats.Inserted)
	assert.Equal(t, 2, res.Stats.Written, "a closed row may refresh a closed row")

	second, err := env.svc.Show(ctx, key, true)
	require.NoError(t, err)
	delete(first.Vault, offer.FieldIngestedAt)
	delete(second.Vault, offer.FieldIngestedAt)
	assert.Equal(t, first.Vault, second.Vault)
}

func TestClosedOfferIsNotReopened(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.ImportSecondary(ctx, strings.NewReader(weeklyReport), "2024-06-01", nil)
	require.NoError(t, err)
	key := offer.Key{ProjectID: "Vista", ContractUnitNumber: "8"}
	before := env.vault.Raw(vault.ID(key))

	stats, err := env.svc.IngestPrimary(ctx, []mapper.Row{
		{"projectName": "Vista", "contractUnit": "8", "offerStatus": "Pending", "buyer1FirstName": "Someone"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Reasons[reconcile.ReasonImmutableExisting])
	assert.Equal(t, before, env.vault.Raw(vault.ID(key)))
}

func TestIngestPrimaryAndLinkByPhone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.ImportSecondary(ctx, strings.NewReader(weeklyReport), "2024-06-01", nil)
	require.NoError(t, err)
	stats, err := env.svc.IngestPrimary(ctx, []mapper.Row{
		{"projectName": "Vista", "contractUnit": "12", "buyer1FirstName": "Eve", "mobilePhone": "415.555.1234"},
		{"unitName": "Residence 7"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Reasons[mapper.ReasonMissingKey])

	entries, err := env.svc.LinkByPhone(ctx, "415-555-1234")
	require.NoError(t, err)
	keys := make([]offer.Key, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	assert.Equal(t, []offer.Key{
		{ProjectID: "SoMi B", ContractUnitNumber: "214"},
		{ProjectID: "Vista", ContractUnitNumber: "12"},
	}, keys)

	_, err = env.svc.LinkByPhone(ctx, "n/a")
	assert.True(t, IsDomainError(err, CodeBadInput))
}

func TestMissingVaultBlobIsMalformedState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	key := offer.Key{ProjectID: "Vista", ContractUnitNumber: "3"}
	require.NoError(t, env.index.Put(ctx, store.IndexEntry{Key: key, VaultID: "gone", Payload: offer.Record{}}))

	_, err := env.svc.IngestPrimary(ctx, []mapper.Row{
		{"projectName": "Vista", "contractUnit": "3", "offerStatus": "Pending"},
	}, &RunOptions{Workers: 1})
	require.ErrorIs(t, err, ErrMalformedState)

	_, err = env.svc.Show(ctx, key, true)
	require.ErrorIs(t, err, ErrMalformedState)
}

func TestShowErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Show(ctx, offer.Key{ProjectID: "Vista"}, false)
	assert.True(t, IsDomainError(err, CodeInvalidKey))

	_, err = env.svc.Show(ctx, offer.Key{ProjectID: "Vista", ContractUnitNumber: "99"}, false)
	assert.True(t, IsDomainError(err, CodeNotFound))

	_, err = env.svc.ImportSecondary(ctx, strings.NewReader(""), "", nil)
	assert.True(t, IsDomainError(err, CodeBadInput))
}

func TestSearchWithoutMeiliScansIndex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.ImportSecondary(ctx, strings.NewReader(weeklyReport), "2024-06-01", nil)
	require.NoError(t, err)

	resp := env.svc.Search(ctx, search.Query{Text: "haypark", ProjectID: "SoMi B"})
	assert.Equal(t, "store", resp.Backend)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "214", resp.Results[0].Key.ContractUnitNumber)

	n, err := env.svc.Reindex(ctx, "SoMi B")
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, env.svc.Close())
}

func TestImportSecondaryDefaultsReportDateToToday(t *testing.T) {
	env := newTestEnv(t)
	env.svc.now = func() time.Time { return time.Date(2024, 7, 8, 23, 30, 0, 0, time.FixedZone("PDT", -7*3600)) }
	ctx := context.Background()

	_, err := env.svc.ImportSecondary(ctx, strings.NewReader("project,unit,status\nVista,8,Pending\n"), "", nil)
	require.NoError(t, err)

	view, err := env.svc.Show(ctx, offer.Key{ProjectID: "Vista", ContractUnitNumber: "8"}, true)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-09", view.Vault[offer.FieldReportDate])
}

func TestBuyerDisplayNameSurvivesLaterMerge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	key := offer.Key{ProjectID: "Vista", ContractUnitNumber: "12"}

	_, err := env.svc.IngestPrimary(ctx, []mapper.Row{{
		"projectName":      "Vista",
		"contractUnit":     "12",
		"buyerDisplayName": "The Ng Family Trust",
		"buyer1FirstName":  "Eve",
		"buyer1LastName":   "Ng",
	}}, nil)
	require.NoError(t, err)

	view, err := env.svc.Show(ctx, key, true)
	require.NoError(t, err)
	assert.Equal(t, "The Ng Family Trust", view.Vault[offer.FieldBuyerDisplayName])
	assert.Equal(t, "the ng family trust", view.Index.Payload[offer.FieldBuyerName])
	assert.NotContains(t, view.Index.Payload, offer.FieldBuyerDisplayName)

	_, err = env.svc.ImportSecondary(ctx, strings.NewReader("project,unit,buyer_1_first_name,buyer_1_last_name,status\nVista,12,Eve,Ng,In Escrow\n"), "2024-06-01", nil)
	require.NoError(t, err)

	view, err = env.svc.Show(ctx, key, true)
	require.NoError(t, err)
	assert.Equal(t, "the ng family trust", view.Index.Payload[offer.FieldBuyerName])
	assert.Equal(t, "in escrow", view.Index.Payload[offer.FieldStatus])
}
