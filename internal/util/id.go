package util

import "github.com/google/uuid"

// NewID returns a random identifier, optionally prefixed ("run_3f9c...").
func NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
