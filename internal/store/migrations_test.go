package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offerbridge/internal/offer"
)

var testMigrationsDir = filepath.Join("..", "..", "db", "migrations")

func downFile(up string) string {
	return strings.TrimSuffix(up, ".up.sql") + ".down.sql"
}

func TestEveryUpMigrationHasADown(t *testing.T) {
	ups, err := migrationFiles(testMigrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		_, err := os.Stat(downFile(up))
		assert.NoError(t, err, "missing down file for %s", filepath.Base(up))
	}

	entries, err := os.ReadDir(testMigrationsDir)
	require.NoError(t, err)
	downs := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".down.sql") {
			downs++
		}
	}
	assert.Equal(t, len(ups), downs, "orphan down migrations")
}

func TestImmutableGuardRaisesInsteadOfIgnoring(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join(testMigrationsDir, "0002_offer_index_immutable_guard.up.sql"))
	require.NoError(t, err)
	sqlText := string(raw)

	for _, snippet := range []string{
		"RAISE EXCEPTION",
		"ERRCODE = 'restrict_violation'",
		"BEFORE UPDATE ON offer_index",
	} {
		assert.Contains(t, sqlText, snippet)
	}
	assert.NotContains(t, sqlText, "DO INSTEAD NOTHING")
}

func TestMigrationsUpDownUp(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	db, err := Open(ctx, dsn, PoolOptions{MaxOpenConns: 2})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `DROP SCHEMA IF EXISTS public CASCADE; CREATE SCHEMA public;`)
	require.NoError(t, err)

	applied, err := ApplyMigrations(ctx, db, testMigrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, applied)

	pending, err := PendingMigrations(ctx, db, testMigrationsDir)
	require.NoError(t, err)
	assert.Empty(t, pending)

	ups, err := migrationFiles(testMigrationsDir)
	require.NoError(t, err)
	for i := len(ups) - 1; i >= 0; i-- {
		raw, err := os.ReadFile(downFile(ups[i]))
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, string(raw))
		require.NoError(t, err, "down %s", filepath.Base(ups[i]))
	}
	_, err = db.ExecContext(ctx, `DELETE FROM schema_migrations`)
	require.NoError(t, err)

	_, err = ApplyMigrations(ctx, db, testMigrationsDir)
	require.NoError(t, err)

	s := NewPostgresStore(db)
	key := offer.Key{ProjectID: "it-migrate", ContractUnitNumber: "1"}
	require.NoError(t, s.Put(ctx, IndexEntry{Key: key, VaultID: "v", Payload: offer.Record{offer.FieldStatus: "pending"}}))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Payload[offer.FieldStatus])
	_, _ = db.ExecContext(ctx, `DELETE FROM offer_index WHERE project_id = 'it-migrate'`)
}
