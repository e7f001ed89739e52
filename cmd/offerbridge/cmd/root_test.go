package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offerbridge/internal/app"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func memoryEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("INDEX_BACKEND", "memory")
	t.Setenv("MINIO_ENDPOINT", "")
	t.Setenv("MEILI_URL", "")
	t.Setenv("PHONE_HASH_SALT", "pepper")
	t.Setenv("METRICS_TEXTFILE", filepath.Join(dir, "offerbridge.prom"))
	return dir
}

func TestImportCommand(t *testing.T) {
	dir := memoryEnv(t)
	report := filepath.Join(dir, "weekly.tsv")
	require.NoError(t, os.WriteFile(report, []byte("Project\tUnit\tStatus\nVista\t8\tClosed\nFusion\t1\tPending\n"), 0o600))

	out, err := run(t, "import", report, "--report-date", "2024-06-01", "--workers", "1")
	require.NoError(t, err)

	var res app.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, 1, res.Stats.Inserted)
	assert.Equal(t, 1, res.Stats.Skipped)

	metricsText, err := os.ReadFile(filepath.Join(dir, "offerbridge.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metricsText), `offerbridge_reconcile_rows_total{outcome="inserted",source="secondary"} 1`)
}

func TestIngestCommandRejectsBadJSON(t *testing.T) {
	dir := memoryEnv(t)
	input := filepath.Join(dir, "rows.json")
	require.NoError(t, os.WriteFile(input, []byte("{not json"), 0o600))

	_, err := run(t, "ingest", input)
	assert.Error(t, err)
}

func TestUnknownBackend(t *testing.T) {
	memoryEnv(t)
	t.Setenv("INDEX_BACKEND", "cassandra")
	_, err := run(t, "show", "Vista", "8")
	assert.ErrorContains(t, err, "unknown INDEX_BACKEND")
}

func TestPersistentIndexRequiresVaultEndpoint(t *testing.T) {
	for _, backend := range []string{"postgres", "redis"} {
		t.Run(backend, func(t *testing.T) {
			memoryEnv(t)
			t.Setenv("INDEX_BACKEND", backend)
			_, err := run(t, "show", "Vista", "8")
			assert.ErrorContains(t, err, "needs MINIO_ENDPOINT")
		})
	}
}
