package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newRouter(agg *Aggregator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, agg)
	return r
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLiveness(t *testing.T) {
	agg := NewAggregator()
	agg.Register(staticChecker("ledger", StatusUnhealthy))

	rec := get(t, newRouter(agg), "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("GET /healthz = %d %q, want 200 OK", rec.Code, rec.Body.String())
	}
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		status   Status
		wantCode int
		wantBody string
	}{
		{StatusHealthy, http.StatusOK, "OK"},
		{StatusDegraded, http.StatusOK, "DEGRADED"},
		{StatusUnhealthy, http.StatusServiceUnavailable, "UNHEALTHY"},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			agg := NewAggregator()
			agg.Register(staticChecker("ledger", tt.status))

			rec := get(t, newRouter(agg), "/readyz")
			if rec.Code != tt.wantCode {
				t.Errorf("status code = %d, want %d", rec.Code, tt.wantCode)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestDetailed(t *testing.T) {
	agg := NewAggregator()
	agg.Register(staticChecker("ledger", StatusUnhealthy))
	agg.Register(staticChecker("cache", StatusHealthy))

	rec := get(t, newRouter(agg), "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status code = %d, want 503", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", resp.Status)
	}
	if len(resp.Checks) != 2 {
		t.Fatalf("checks = %v, want 2 entries", resp.Checks)
	}
	if resp.Checks["ledger"].Error != ErrCheckFailed.Error() {
		t.Errorf("ledger error = %q, want %q", resp.Checks["ledger"].Error, ErrCheckFailed.Error())
	}
	if resp.Timestamp == "" {
		t.Error("timestamp missing")
	}
}

func TestSingle(t *testing.T) {
	agg := NewAggregator()
	agg.Register(staticChecker("cache", StatusDegraded))
	r := newRouter(agg)

	rec := get(t, r, "/health/cache")
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200", rec.Code)
	}
	var resp CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Status != "degraded" || resp.Message != "cache degraded" {
		t.Errorf("response = %+v", resp)
	}

	rec = get(t, r, "/health/unknown")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown checker status code = %d, want 404", rec.Code)
	}
}
