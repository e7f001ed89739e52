// Package vault holds the full, PII-bearing offer record. Blobs are JSON,
// optionally sealed with a NaCl secretbox key, and addressed by an opaque id
// derived from the offer key.
package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"offerbridge/internal/offer"
)

var ErrNotFound = errors.New("vault blob not found")

// namespace scopes the name-based UUIDs used as vault ids.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:offerbridge:vault"))

// Store is a blob store for vault payloads.
type Store interface {
	Put(ctx context.Context, id string, payload offer.Record) error
	Get(ctx context.Context, id string) (offer.Record, error)
}

// ID returns the vault id for an offer key. It is a name-based UUID, so the
// same key always maps to the same blob and re-imports overwrite in place.
func ID(key offer.Key) string {
	return uuid.NewSHA1(namespace, []byte(key.ProjectID+"\x00"+key.ContractUnitNumber)).String()
}

// codec turns records into stored bytes and back.
type codec struct {
	sealer *Sealer
}

func (c codec) encode(payload offer.Record) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal vault payload: %w", err)
	}
	if c.sealer == nil {
		return raw, nil
	}
	return c.sealer.Seal(raw)
}

func (c codec) decode(blob []byte) (offer.Record, error) {
	raw := blob
	if c.sealer != nil {
		var err error
		if raw, err = c.sealer.Open(blob); err != nil {
			return nil, err
		}
	}
	var payload offer.Record
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode vault payload: %w", err)
	}
	return offer.Normalize(payload), nil
}

func contentType(s *Sealer) string {
	if s != nil {
		return "application/octet-stream"
	}
	return "application/json"
}
