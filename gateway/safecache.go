package gateway

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/jonwraymond/contentgate/observe"
)

// Cache fault stages reported to metrics.
const (
	faultFingerprint = "fingerprint"
	faultGet         = "get"
	faultDecode      = "decode"
	faultEncode      = "encode"
	faultSet         = "set"
)

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}

func (s *Service) cacheFault(ctx context.Context, stage string, err error) {
	s.metrics.RecordCacheFault(ctx, stage)
	s.logger.Warn(ctx, "cache fault treated as miss",
		observe.F("stage", stage),
		observe.F("error", err),
	)
}

// fingerprint returns the cache key of req, or "" when caching is off or the
// request cannot be fingerprinted.
func (s *Service) fingerprint(ctx context.Context, req GenerationRequest, options GenerationOptions) (key string) {
	if s.cache == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			s.cacheFault(ctx, faultFingerprint, panicError(r))
			key = ""
		}
	}()

	key, err := s.fp.Fingerprint(req.BlockType, req.Prompt, req.Context, options)
	if err != nil {
		s.cacheFault(ctx, faultFingerprint, err)
		return ""
	}
	return key
}

// cacheGet looks up key and decodes the stored content. Any failure is a miss.
func (s *Service) cacheGet(ctx context.Context, key, blockType string) (content *GeneratedContent, hit bool) {
	if s.cache == nil || key == "" {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			s.cacheFault(ctx, faultGet, panicError(r))
			content, hit = nil, false
		}
	}()

	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		s.metrics.RecordCacheLookup(ctx, blockType, false)
		return nil, false
	}

	var decoded GeneratedContent
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.cacheFault(ctx, faultDecode, err)
		s.metrics.RecordCacheLookup(ctx, blockType, false)
		return nil, false
	}
	s.metrics.RecordCacheLookup(ctx, blockType, true)
	return &decoded, true
}

// cacheSet stores content under key. Failures are logged and counted only.
func (s *Service) cacheSet(ctx context.Context, key string, content GeneratedContent) {
	if s.cache == nil || key == "" {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.cacheFault(ctx, faultSet, panicError(r))
		}
	}()

	raw, err := json.Marshal(content)
	if err != nil {
		s.cacheFault(ctx, faultEncode, err)
		return
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.cacheFault(ctx, faultSet, err)
	}
}
