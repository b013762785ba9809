package health

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jonwraymond/contentgate/cache"
)

// Pinger is implemented by components backed by an external connection,
// such as the SQL usage ledger.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports unhealthy when Ping fails.
type PingChecker struct {
	name   string
	pinger Pinger
}

// NewPingChecker creates a checker around p.
func NewPingChecker(name string, p Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: p}
}

// Name returns the name of this checker.
func (c *PingChecker) Name() string {
	return c.name
}

// Check pings the component.
func (c *PingChecker) Check(ctx context.Context) Result {
	if err := c.pinger.Ping(ctx); err != nil {
		return Unhealthy(fmt.Sprintf("%s unreachable", c.name), errors.Join(ErrCheckFailed, err))
	}
	return Healthy(fmt.Sprintf("%s reachable", c.name))
}

// CacheStatsSource exposes cache counters.
type CacheStatsSource interface {
	Stats() cache.Stats
}

// CacheChecker reports cache occupancy and hit rate. The cache is in-process
// so it is always healthy; the check exists to surface its counters.
type CacheChecker struct {
	source CacheStatsSource
}

// NewCacheChecker creates a checker for the given cache.
func NewCacheChecker(source CacheStatsSource) *CacheChecker {
	return &CacheChecker{source: source}
}

// Name returns the name of this checker.
func (c *CacheChecker) Name() string {
	return "cache"
}

// Check reads a snapshot of the cache counters.
func (c *CacheChecker) Check(_ context.Context) Result {
	s := c.source.Stats()
	return Healthy(fmt.Sprintf("%d/%d entries", s.Size, s.Capacity)).WithDetails(map[string]any{
		"size":        s.Size,
		"capacity":    s.Capacity,
		"hits":        s.Hits,
		"misses":      s.Misses,
		"evictions":   s.Evictions,
		"expirations": s.Expirations,
		"hit_rate":    math.Round(s.HitRate()*100) / 100,
	})
}
