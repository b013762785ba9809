package cache

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/zeebo/xxh3"
)

// FingerprintLength is the length in characters of every fingerprint.
const FingerprintLength = 32

// Fingerprinter derives deterministic cache keys from generation requests.
//
// Contract:
// - Determinism: structurally equal inputs produce the same key.
// - Concurrency: implementations must be safe for concurrent use.
type Fingerprinter interface {
	// Fingerprint returns a fixed-length hex key for the request.
	Fingerprint(blockType, prompt string, context, options any) (string, error)
}

// XXH3Fingerprinter hashes the canonical request encoding with XXH3-128.
type XXH3Fingerprinter struct{}

// NewFingerprinter creates the default fingerprinter.
func NewFingerprinter() *XXH3Fingerprinter {
	return &XXH3Fingerprinter{}
}

// Fingerprint serializes [blockType, prompt, context, options] canonically
// and returns the 128-bit digest as 32 lowercase hex characters.
func (f *XXH3Fingerprinter) Fingerprint(blockType, prompt string, context, options any) (string, error) {
	canonical, err := Canonicalize([]any{blockType, prompt, context, options})
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize request: %w", err)
	}

	sum := xxh3.Hash128(canonical).Bytes()
	return hex.EncodeToString(sum[:]), nil
}

// Canonicalize produces a deterministic JSON representation of v.
// Structs are normalized through a JSON round trip and maps are sorted by key
// at every depth. Slice order is preserved.
func Canonicalize(v any) ([]byte, error) {
	normalized, err := normalize(v)
	if err != nil {
		return nil, err
	}
	return canonicalize(normalized)
}

func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

// Ensure XXH3Fingerprinter implements Fingerprinter
var _ Fingerprinter = (*XXH3Fingerprinter)(nil)
