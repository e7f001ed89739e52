package vault

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var ErrSealedBlob = errors.New("vault blob cannot be opened with the configured key")

// Sealer encrypts vault blobs at rest with a 32-byte secretbox key. The
// nonce is random and stored in front of the box.
type Sealer struct {
	key [keySize]byte
}

// ParseKey reads a 32-byte key given as 64 hex characters or standard
// base64. An empty string means no sealing and returns a nil Sealer.
func ParseKey(s string) (*Sealer, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var raw []byte
	if b, err := hex.DecodeString(s); err == nil && len(b) == keySize {
		raw = b
	} else if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == keySize {
		raw = b
	} else {
		return nil, fmt.Errorf("vault seal key must be %d bytes as hex or base64", keySize)
	}
	var sealer Sealer
	copy(sealer.key[:], raw)
	return &sealer, nil
}

func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &s.key), nil
}

func (s *Sealer) Open(blob []byte) ([]byte, error) {
	if len(blob) < nonceSize+secretbox.Overhead {
		return nil, ErrSealedBlob
	}
	var nonce [nonceSize]byte
	copy(nonce[:], blob[:nonceSize])
	plain, ok := secretbox.Open(nil, blob[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrSealedBlob
	}
	return plain, nil
}
