package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/jonwraymond/contentgate/resilience"
)

// Kind classifies an upstream failure.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindAuth        Kind = "auth"
	KindRateLimited Kind = "rate_limited"
	KindUnavailable Kind = "unavailable"
	KindOther       Kind = "other"
)

// Message returns the user-facing description of the failure kind.
func (k Kind) Message() string {
	switch k {
	case KindTimeout:
		return "AI generation timed out"
	case KindAuth:
		return "AI service authentication failed"
	case KindRateLimited:
		return "AI service rate limit exceeded"
	case KindUnavailable:
		return "AI service temporarily unavailable"
	default:
		return "AI generation failed"
	}
}

// Error is a classified upstream failure.
type Error struct {
	Kind Kind
	// StatusCode is the upstream HTTP status, 0 when none was received.
	StatusCode int
	Err        error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrTimeout     = &Error{Kind: KindTimeout}
	ErrAuth        = &Error{Kind: KindAuth}
	ErrRateLimited = &Error{Kind: KindRateLimited}
	ErrUnavailable = &Error{Kind: KindUnavailable}
	ErrOther       = &Error{Kind: KindOther}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("upstream: %s", e.Kind)
	}
	return fmt.Sprintf("upstream: %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindForStatus maps an upstream HTTP status to a failure kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 500:
		return KindUnavailable
	default:
		return KindOther
	}
}

// Classify converts any error from an upstream call into an *Error.
// Errors that are already classified are returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var ue *Error
	if errors.As(err, &ue) {
		return ue
	}

	switch {
	case errors.Is(err, resilience.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Err: err}
	case errors.Is(err, resilience.ErrBulkheadFull):
		return &Error{Kind: KindUnavailable, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Err: err}
		}
		return &Error{Kind: KindUnavailable, Err: err}
	}

	return &Error{Kind: KindOther, Err: err}
}
