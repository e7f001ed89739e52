package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"offerbridge/internal/offer"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	store.now = func() time.Time { return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) }
	return store, s
}

func entry(project, unit string, payload offer.Record) IndexEntry {
	return IndexEntry{
		Key:     offer.Key{ProjectID: project, ContractUnitNumber: unit},
		Payload: payload,
		VaultID: "vault-" + unit,
	}
}

func TestNewRedisStore(t *testing.T) {
	s := miniredis.RunT(t)

	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestNewRedisStoreBadURL(t *testing.T) {
	if _, err := NewRedisStore("not a url"); err == nil {
		t.Fatal("expected error for malformed url")
	}
}

func TestRedisPutAndGet(t *testing.T) {
	store, _ := setupTestRedis(t)
	defer store.Close()
	ctx := context.Background()

	e := entry("SoMi B", "214", offer.Record{
		offer.FieldStatus:         "in escrow",
		offer.FieldTotalPrice:     815000.0,
		offer.FieldIsImmutable:    1,
		offer.FieldUnitCollection: "haypark condos",
	})
	e.IsImmutable = true
	if err := store.Put(ctx, e); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, e.Key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.VaultID != "vault-214" {
		t.Errorf("expected vault id vault-214, got %s", got.VaultID)
	}
	if !got.IsImmutable {
		t.Error("expected immutable entry")
	}
	if got.Payload[offer.FieldIsImmutable] != 1 {
		t.Errorf("expected is_immutable int 1, got %#v", got.Payload[offer.FieldIsImmutable])
	}
	if got.Payload[offer.FieldTotalPrice] != 815000.0 {
		t.Errorf("unexpected total price %#v", got.Payload[offer.FieldTotalPrice])
	}
	if !got.UpdatedAt.Equal(time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected updated_at %v", got.UpdatedAt)
	}
}

func TestRedisGetMissing(t *testing.T) {
	store, _ := setupTestRedis(t)
	defer store.Close()

	_, err := store.Get(context.Background(), offer.Key{ProjectID: "Vista", ContractUnitNumber: "1"})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisRejectsImmutableDowngrade(t *testing.T) {
	store, _ := setupTestRedis(t)
	defer store.Close()
	ctx := context.Background()

	closed := entry("Vista", "8", offer.Record{offer.FieldStatus: "closed"})
	closed.IsImmutable = true
	if err := store.Put(ctx, closed); err != nil {
		t.Fatalf("Put closed failed: %v", err)
	}

	reopened := entry("Vista", "8", offer.Record{offer.FieldStatus: "pending"})
	if err := store.Put(ctx, reopened); err != ErrImmutable {
		t.Fatalf("expected ErrImmutable, got %v", err)
	}

	got, err := store.Get(ctx, closed.Key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Payload[offer.FieldStatus] != "closed" {
		t.Errorf("immutable entry was modified: %v", got.Payload)
	}

	refreshed := entry("Vista", "8", offer.Record{offer.FieldStatus: "closed", offer.FieldTotalPrice: 1.0})
	refreshed.IsImmutable = true
	if err := store.Put(ctx, refreshed); err != nil {
		t.Fatalf("immutable refresh failed: %v", err)
	}
}

func TestRedisListAndPhoneLookup(t *testing.T) {
	store, _ := setupTestRedis(t)
	defer store.Close()
	ctx := context.Background()

	puts := []IndexEntry{
		entry("Vista", "9", offer.Record{"phone_1_hash": "aaa"}),
		entry("Vista", "10", offer.Record{offer.FieldPhoneHash: "bbb"}),
		entry("Fusion", "1", offer.Record{offer.FieldPhoneHash: "aaa"}),
	}
	for _, e := range puts {
		if err := store.Put(ctx, e); err != nil {
			t.Fatalf("Put %s failed: %v", e.Key, err)
		}
	}

	vista, err := store.List(ctx, "Vista")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(vista) != 2 || vista[0].Key.ContractUnitNumber != "10" || vista[1].Key.ContractUnitNumber != "9" {
		t.Fatalf("unexpected list result: %+v", vista)
	}

	linked, err := store.FindByPhoneHash(ctx, "aaa")
	if err != nil {
		t.Fatalf("FindByPhoneHash failed: %v", err)
	}
	if len(linked) != 2 || linked[0].Key.ProjectID != "Fusion" || linked[1].Key.ProjectID != "Vista" {
		t.Fatalf("unexpected phone lookup result: %+v", linked)
	}

	// A rewrite without the marker drops the old phone link.
	if err := store.Put(ctx, entry("Vista", "9", offer.Record{offer.FieldStatus: "pending"})); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	linked, err = store.FindByPhoneHash(ctx, "aaa")
	if err != nil {
		t.Fatalf("FindByPhoneHash failed: %v", err)
	}
	if len(linked) != 1 || linked[0].Key.ProjectID != "Fusion" {
		t.Fatalf("stale phone link left behind: %+v", linked)
	}

	none, err := store.List(ctx, "Nowhere")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty list, got %v %v", none, err)
	}
}
