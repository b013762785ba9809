package cache

import (
	"context"
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Cache is the interface for caching generated content.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Capacity: implementations must never hold more live entries than their capacity.
// - Errors: Get never errors; it returns (nil, false) on miss or expiry.
type Cache interface {
	// Get retrieves a cached value. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value, replacing any existing value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a cached value. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error

	// Len returns the number of physically present entries, expired or not.
	Len() int
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}

	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}

	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}

	return nil
}
