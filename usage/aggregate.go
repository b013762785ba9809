package usage

import "math"

// DateLayout is the key format of Stats.ByDate.
const DateLayout = "2006-01-02"

// Stats is the aggregate view over a set of usage records.
type Stats struct {
	TotalGenerations  int            `json:"totalGenerations"`
	CachedGenerations int            `json:"cachedGenerations"`
	CacheHitRate      float64        `json:"cacheHitRate"`
	ByBlockType       map[string]int `json:"byBlockType"`
	ByGenerationType  map[string]int `json:"byGenerationType"`
	TotalTokens       int            `json:"totalTokens"`
	ByDate            map[string]int `json:"byDate"`
}

// Aggregate computes Stats over records.
//
// CacheHitRate is a percentage rounded to two decimals and is 0 for an empty
// set. Absent TokensUsed counts as 0 in TotalTokens. ByDate groups by the UTC
// calendar day of Timestamp.
func Aggregate(records []Record) Stats {
	stats := Stats{
		ByBlockType:      make(map[string]int),
		ByGenerationType: make(map[string]int),
		ByDate:           make(map[string]int),
	}

	for _, r := range records {
		stats.TotalGenerations++
		if r.Cached {
			stats.CachedGenerations++
		}
		if r.TokensUsed != nil {
			stats.TotalTokens += *r.TokensUsed
		}
		stats.ByBlockType[r.BlockType]++
		stats.ByGenerationType[string(r.GenerationType)]++
		stats.ByDate[r.Timestamp.UTC().Format(DateLayout)]++
	}

	if stats.TotalGenerations > 0 {
		rate := float64(stats.CachedGenerations) / float64(stats.TotalGenerations) * 100
		stats.CacheHitRate = round2(rate)
	}

	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
