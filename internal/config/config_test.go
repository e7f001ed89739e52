package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"INDEX_BACKEND", "IMPORT_WORKERS", "IMPORT_CONTINUE_ON_ERROR", "INCLUDE_FUSION", "PHONE_HASH_SALT", "MEILI_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, BackendPostgres, cfg.IndexBackend)
	assert.Equal(t, 4, cfg.ImportWorkers)
	assert.True(t, cfg.ImportContinueOnError)
	assert.False(t, cfg.IncludeFusion)
	assert.Empty(t, cfg.PhoneHashSalt)
	assert.Empty(t, cfg.MeiliURL)
	assert.Equal(t, "./db/migrations", cfg.MigrationsDir)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("INDEX_BACKEND", "Redis")
	t.Setenv("IMPORT_WORKERS", "8")
	t.Setenv("IMPORT_CONTINUE_ON_ERROR", "false")
	t.Setenv("INCLUDE_FUSION", "yes")
	t.Setenv("PHONE_HASH_SALT", "pepper")

	cfg := Load()
	assert.Equal(t, BackendRedis, cfg.IndexBackend)
	assert.Equal(t, 8, cfg.ImportWorkers)
	assert.False(t, cfg.ImportContinueOnError)
	assert.True(t, cfg.IncludeFusion)
	assert.Equal(t, "pepper", cfg.PhoneHashSalt)
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OFFERBRIDGE_TEST_ONLY_KEY=from-file\nMINIO_BUCKET=file-bucket\n"), 0o600))
	t.Setenv("MINIO_BUCKET", "env-bucket")
	t.Cleanup(func() { os.Unsetenv("OFFERBRIDGE_TEST_ONLY_KEY") })

	cfg := Load()
	assert.Equal(t, "env-bucket", cfg.MinioBucket)
	assert.Equal(t, "from-file", os.Getenv("OFFERBRIDGE_TEST_ONLY_KEY"))
}

func TestGetenvHelpersFallBack(t *testing.T) {
	t.Setenv("OFFERBRIDGE_TEST_INT", "many")
	t.Setenv("OFFERBRIDGE_TEST_BOOL", "maybe")
	assert.Equal(t, 3, getenvInt("OFFERBRIDGE_TEST_INT", 3))
	assert.True(t, getenvBool("OFFERBRIDGE_TEST_BOOL", true))

	t.Setenv("OFFERBRIDGE_TEST_BOOL", "1")
	assert.True(t, getenvBool("OFFERBRIDGE_TEST_BOOL", false))
	t.Setenv("OFFERBRIDGE_TEST_BOOL", "off")
	assert.False(t, getenvBool("OFFERBRIDGE_TEST_BOOL", true))
}
