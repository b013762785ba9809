package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response is the JSON body of the detailed health endpoint.
type Response struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON body for a single health check.
type CheckResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// RegisterRoutes mounts /healthz, /readyz, /health and /health/:name.
func RegisterRoutes(r gin.IRoutes, agg *Aggregator) {
	r.GET("/healthz", Liveness)
	r.GET("/readyz", Readiness(agg))
	r.GET("/health", Detailed(agg))
	r.GET("/health/:name", Single(agg))
}

// Liveness answers as long as the process serves HTTP.
func Liveness(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Readiness runs every check and answers with a plain-text status.
func Readiness(agg *Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		status := OverallStatus(agg.CheckAll(ctx))
		text := "OK"
		switch status {
		case StatusDegraded:
			text = "DEGRADED"
		case StatusUnhealthy:
			text = "UNHEALTHY"
		}
		c.String(httpStatus(status), text)
	}
}

// Detailed runs every check and reports each result.
func Detailed(agg *Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := agg.CheckAll(c.Request.Context())
		status := OverallStatus(results)

		resp := Response{
			Status:    status.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]CheckResponse, len(results)),
		}
		for name, result := range results {
			resp.Checks[name] = toCheckResponse(result)
		}
		c.JSON(httpStatus(status), resp)
	}
}

// Single runs the check named by the :name path parameter.
func Single(agg *Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := agg.Check(c.Request.Context(), c.Param("name"))
		if errors.Is(err, ErrCheckerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(httpStatus(result.Status), toCheckResponse(result))
	}
}

func toCheckResponse(result Result) CheckResponse {
	resp := CheckResponse{
		Status:   result.Status.String(),
		Message:  result.Message,
		Duration: result.Duration.String(),
		Details:  result.Details,
	}
	if result.Error != nil {
		resp.Error = result.Error.Error()
	}
	return resp
}

// httpStatus reports degraded components as still serving.
func httpStatus(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
