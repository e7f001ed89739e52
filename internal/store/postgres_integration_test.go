package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"offerbridge/internal/offer"
)

func openIntegrationStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	db, err := Open(ctx, databaseURL, PoolOptions{MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if _, err := ApplyMigrations(ctx, db, filepath.Join("..", "..", "db", "migrations")); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM offer_index WHERE project_id LIKE 'it-%'`)
		_ = db.Close()
	})
	return NewPostgresStore(db)
}

func TestPostgresOfferIndexRoundTrip(t *testing.T) {
	s := openIntegrationStore(t)
	ctx := context.Background()

	e := IndexEntry{
		Key:     offer.Key{ProjectID: "it-vista", ContractUnitNumber: "8"},
		Payload: offer.Record{offer.FieldStatus: "pending", offer.FieldTotalPrice: 640000.0, offer.FieldPhoneHash: "abc"},
		VaultID: "vault-8",
	}
	if err := s.Put(ctx, e); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, e.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.VaultID != "vault-8" || got.Payload[offer.FieldTotalPrice] != 640000.0 {
		t.Fatalf("unexpected entry: %+v", got)
	}

	e.Payload[offer.FieldStatus] = "in escrow"
	if err := s.Put(ctx, e); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	list, err := s.List(ctx, "it-vista")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Payload[offer.FieldStatus] != "in escrow" {
		t.Fatalf("unexpected list: %+v", list)
	}

	linked, err := s.FindByPhoneHash(ctx, "abc")
	if err != nil {
		t.Fatalf("find by phone hash: %v", err)
	}
	if len(linked) == 0 {
		t.Fatal("expected phone hash lookup to find the entry")
	}

	if _, err := s.Get(ctx, offer.Key{ProjectID: "it-vista", ContractUnitNumber: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestPostgresImmutableTriggerBlocksDowngrade verifies the database refuses
// to reopen a closed sale even if a caller skips the engine's guard.
func TestPostgresImmutableTriggerBlocksDowngrade(t *testing.T) {
	s := openIntegrationStore(t)
	ctx := context.Background()

	key := offer.Key{ProjectID: "it-closed", ContractUnitNumber: "214"}
	closed := IndexEntry{Key: key, Payload: offer.Record{offer.FieldStatus: "closed"}, IsImmutable: true}
	if err := s.Put(ctx, closed); err != nil {
		t.Fatalf("put closed: %v", err)
	}

	reopened := IndexEntry{Key: key, Payload: offer.Record{offer.FieldStatus: "pending"}}
	if err := s.Put(ctx, reopened); !errors.Is(err, ErrImmutable) {
		t.Fatalf("expected ErrImmutable, got %v", err)
	}

	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Payload[offer.FieldStatus] != "closed" {
		t.Fatalf("closed sale was modified: %+v", got.Payload)
	}

	closed.Payload[offer.FieldTotalPrice] = 815000.0
	if err := s.Put(ctx, closed); err != nil {
		t.Fatalf("immutable refresh should succeed: %v", err)
	}
}
