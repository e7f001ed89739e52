package cmd

import (
	"context"
	"fmt"
	"strings"

	"offerbridge/internal/app"
	"offerbridge/internal/config"
	"offerbridge/internal/logging"
	"offerbridge/internal/search"
	"offerbridge/internal/store"
	"offerbridge/internal/vault"
)

// openIndex connects the index backend named by INDEX_BACKEND.
func openIndex(ctx context.Context, cfg config.Config) (store.IndexStore, error) {
	switch cfg.IndexBackend {
	case config.BackendPostgres:
		db, err := store.Open(ctx, cfg.DatabaseURL, store.PoolOptions{MaxOpenConns: cfg.ImportWorkers * 2})
		if err != nil {
			return nil, err
		}
		return store.NewPostgresStore(db), nil
	case config.BackendRedis:
		return store.NewRedisStore(cfg.RedisURL)
	case config.BackendMemory:
		logging.Default().Warn().Msg("memory index backend: nothing is persisted")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown INDEX_BACKEND %q", cfg.IndexBackend)
	}
}

func openVault(ctx context.Context, cfg config.Config) (vault.Store, error) {
	sealer, err := vault.ParseKey(cfg.VaultSealKey)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.MinioEndpoint) == "" {
		logging.Default().Warn().Msg("MINIO_ENDPOINT not set: vault kept in memory")
		return vault.NewMemoryStore(sealer), nil
	}
	return vault.NewMinioStore(ctx, vault.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	}, sealer)
}

// checkBackends rejects configurations whose tiers would drift apart between
// runs: a persistent index needs a persistent vault, or every key it already
// holds reads back as malformed state.
func checkBackends(cfg config.Config) error {
	switch cfg.IndexBackend {
	case config.BackendPostgres, config.BackendRedis:
		if strings.TrimSpace(cfg.MinioEndpoint) == "" {
			return fmt.Errorf("INDEX_BACKEND=%s needs MINIO_ENDPOINT; the in-memory vault only pairs with INDEX_BACKEND=memory", cfg.IndexBackend)
		}
	case config.BackendMemory:
	default:
		return fmt.Errorf("unknown INDEX_BACKEND %q", cfg.IndexBackend)
	}
	return nil
}

// buildService wires the configured backends. Callers must Close it.
func buildService(ctx context.Context, cfg config.Config) (*app.Service, error) {
	if err := checkBackends(cfg); err != nil {
		return nil, err
	}
	index, err := openIndex(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	v, err := openVault(ctx, cfg)
	if err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("open vault: %w", err)
	}

	var meili *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
	}
	searchService := search.NewService(meili, search.NewStoreScan(index))

	return app.NewService(cfg, app.Deps{Index: index, Vault: v, Search: searchService}), nil
}
