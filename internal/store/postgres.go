package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"offerbridge/internal/offer"
)

// restrictViolation is raised by the offer_index immutability trigger.
const restrictViolation = "23001"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Get(ctx context.Context, key offer.Key) (IndexEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT project_id, contract_unit_number, payload, vault_id, is_immutable, updated_at
		FROM offer_index
		WHERE project_id = $1 AND contract_unit_number = $2
	`, key.ProjectID, key.ContractUnitNumber)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return IndexEntry{}, ErrNotFound
	}
	if err != nil {
		return IndexEntry{}, fmt.Errorf("get offer index %s: %w", key, err)
	}
	return e, nil
}

// Put upserts the entry in one statement. The database trigger rejects an
// update that would clear is_immutable; that surfaces as ErrImmutable.
func (s *PostgresStore) Put(ctx context.Context, e IndexEntry) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshal offer index payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO offer_index (project_id, contract_unit_number, payload, vault_id, is_immutable)
		VALUES ($1, $2, $3::jsonb, $4, $5)
		ON CONFLICT (project_id, contract_unit_number) DO UPDATE SET
			payload = EXCLUDED.payload,
			vault_id = EXCLUDED.vault_id,
			is_immutable = EXCLUDED.is_immutable,
			updated_at = NOW()
	`, e.Key.ProjectID, e.Key.ContractUnitNumber, string(payload), e.VaultID, e.IsImmutable)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == restrictViolation {
			return ErrImmutable
		}
		return fmt.Errorf("put offer index %s: %w", e.Key, err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, projectID string) ([]IndexEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, contract_unit_number, payload, vault_id, is_immutable, updated_at
		FROM offer_index
		WHERE project_id = $1
		ORDER BY contract_unit_number
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list offer index: %w", err)
	}
	defer rows.Close()

	var entries []IndexEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer index: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offer index: %w", err)
	}
	return entries, nil
}

// FindByPhoneHash returns every indexed offer, across projects, carrying
// hash in any of its phone marker fields.
func (s *PostgresStore) FindByPhoneHash(ctx context.Context, hash string) ([]IndexEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, contract_unit_number, payload, vault_id, is_immutable, updated_at
		FROM offer_index
		WHERE $1 IN (payload->>'phone_hash', payload->>'phone_1_hash', payload->>'phone_2_hash', payload->>'phone_3_hash')
		ORDER BY project_id, contract_unit_number
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("find offers by phone hash: %w", err)
	}
	defer rows.Close()

	var entries []IndexEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer index: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (IndexEntry, error) {
	var (
		e       IndexEntry
		payload []byte
	)
	if err := row.Scan(&e.Key.ProjectID, &e.Key.ContractUnitNumber, &payload, &e.VaultID, &e.IsImmutable, &e.UpdatedAt); err != nil {
		return IndexEntry{}, err
	}
	if err := json.Unmarshal(payload, &e.Payload); err != nil {
		return IndexEntry{}, fmt.Errorf("decode payload: %w", err)
	}
	e.Payload = offer.Normalize(e.Payload)
	return e, nil
}
