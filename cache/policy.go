package cache

import "time"

// Default policy values.
const (
	DefaultCapacity = 1000
	DefaultTTL      = 7 * 24 * time.Hour
)

// Policy configures the bounded cache.
type Policy struct {
	// Capacity is the maximum number of entries held at once.
	// Inserting a new key at capacity evicts the earliest-inserted entry.
	Capacity int

	// TTL is the maximum age of an entry. Older entries read as misses.
	TTL time.Duration
}

// DefaultPolicy returns the default caching policy.
// Capacity: 1000 entries, TTL: 7 days
func DefaultPolicy() Policy {
	return Policy{
		Capacity: DefaultCapacity,
		TTL:      DefaultTTL,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.Capacity > 0 && p.TTL > 0
}

// Expired reports whether an entry inserted at insertedAt is past the TTL at now.
func (p Policy) Expired(insertedAt, now time.Time) bool {
	return now.Sub(insertedAt) > p.TTL
}
