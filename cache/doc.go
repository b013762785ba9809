// Package cache provides the request fingerprint and the bounded response
// cache used by the generation pipeline.
//
// The cache is capacity-limited with first-in-first-out eviction and
// time-to-live expiry checked lazily on read. Fingerprints are XXH3-128
// digests of a canonical JSON encoding of the request.
package cache
