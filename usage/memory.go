package usage

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger keeps records in process memory.
type MemoryLedger struct {
	mu      sync.RWMutex
	records []Record
	now     func() time.Time
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{now: time.Now}
}

// Record appends rec after validation.
func (l *MemoryLedger) Record(_ context.Context, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	rec = rec.withDefaults(l.now)

	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
	return nil
}

// Query aggregates the records matching filter.
func (l *MemoryLedger) Query(ctx context.Context, filter Filter) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	l.mu.RLock()
	matched := make([]Record, 0, len(l.records))
	for _, r := range l.records {
		if filter.Matches(r) {
			matched = append(matched, r)
		}
	}
	l.mu.RUnlock()

	return Aggregate(matched), nil
}

// Records returns a copy of all records in insertion order.
func (l *MemoryLedger) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Ensure MemoryLedger implements Ledger
var _ Ledger = (*MemoryLedger)(nil)
