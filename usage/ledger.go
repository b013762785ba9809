package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerationType identifies which pipeline produced a record.
type GenerationType string

const (
	GenerationGenerate GenerationType = "generate"
	GenerationRefine   GenerationType = "refine"
	GenerationOutline  GenerationType = "outline"
	GenerationAltText  GenerationType = "alt-text"
)

// Valid reports whether t is a known generation type.
func (t GenerationType) Valid() bool {
	switch t {
	case GenerationGenerate, GenerationRefine, GenerationOutline, GenerationAltText:
		return true
	}
	return false
}

// Sentinel errors for ledger operations.
var (
	// ErrInvalidRecord indicates a record is missing a required field.
	ErrInvalidRecord = errors.New("usage: invalid record")

	// ErrNilDB indicates a nil database handle was provided.
	ErrNilDB = errors.New("usage: database is nil")

	// ErrUnsupportedDriver indicates an unknown database driver name.
	ErrUnsupportedDriver = errors.New("usage: unsupported database driver")
)

// Record is one completed pipeline invocation.
type Record struct {
	ID             uuid.UUID      `json:"id"`
	UserID         string         `json:"userId"`
	CourseID       string         `json:"courseId"`
	BlockType      string         `json:"blockType"`
	GenerationType GenerationType `json:"generationType"`
	PromptLength   int            `json:"promptLength"`
	ResponseLength int            `json:"responseLength"`
	// TokensUsed is nil when the upstream did not report usage or the
	// result was served from cache.
	TokensUsed *int      `json:"tokensUsed,omitempty"`
	Cached     bool      `json:"cached"`
	Timestamp  time.Time `json:"timestamp"`
}

// Validate checks the fields every store requires.
func (r Record) Validate() error {
	if r.CourseID == "" {
		return fmt.Errorf("%w: courseId is required", ErrInvalidRecord)
	}
	if r.BlockType == "" {
		return fmt.Errorf("%w: blockType is required", ErrInvalidRecord)
	}
	if !r.GenerationType.Valid() {
		return fmt.Errorf("%w: unknown generation type %q", ErrInvalidRecord, r.GenerationType)
	}
	if r.PromptLength < 0 || r.ResponseLength < 0 {
		return fmt.Errorf("%w: lengths must be non-negative", ErrInvalidRecord)
	}
	return nil
}

// withDefaults fills ID and Timestamp when the caller left them unset.
func (r Record) withDefaults(now func() time.Time) Record {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = now()
	}
	r.Timestamp = r.Timestamp.UTC()
	return r
}

// Filter narrows a ledger query. Zero values mean unbounded.
type Filter struct {
	CourseID string
	// Start and End bound Timestamp inclusively.
	Start time.Time
	End   time.Time
}

// Matches reports whether r satisfies the filter.
func (f Filter) Matches(r Record) bool {
	if f.CourseID != "" && r.CourseID != f.CourseID {
		return false
	}
	if !f.Start.IsZero() && r.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && r.Timestamp.After(f.End) {
		return false
	}
	return true
}

// Ledger is an append-only sink of usage records with an aggregate query.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Record failures are reported to the caller, which logs and drops them.
type Ledger interface {
	// Record appends one usage record.
	Record(ctx context.Context, rec Record) error

	// Query aggregates the records matching filter.
	Query(ctx context.Context, filter Filter) (Stats, error)
}
