package resilience

import (
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrBulkheadFull", ErrBulkheadFull, "resilience: bulkhead at capacity"},
		{"ErrTimeout", ErrTimeout, "resilience: operation timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("%s.Error() = %q, want %q", tt.name, got, tt.wantMsg)
			}
		})
	}

	if errors.Is(ErrBulkheadFull, ErrTimeout) {
		t.Error("ErrBulkheadFull and ErrTimeout should be distinct")
	}
}
