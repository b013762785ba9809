package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonwraymond/contentgate/auth"
	"github.com/jonwraymond/contentgate/observe"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID accepts the caller's request ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger writes one line per request once the handler returns.
func RequestLogger(log observe.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []observe.Field{
			observe.F("method", c.Request.Method),
			observe.F("path", path),
			observe.F("status", status),
			observe.F("duration_ms", time.Since(start).Milliseconds()),
			observe.F(requestIDKey, c.GetString(requestIDKey)),
		}
		if principal := auth.PrincipalFromContext(c.Request.Context()); principal != "" {
			fields = append(fields, observe.F("user_id", principal))
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			log.Error(ctx, "http request", fields...)
		case status >= 400:
			log.Warn(ctx, "http request", fields...)
		default:
			log.Info(ctx, "http request", fields...)
		}
	}
}

// RequireAuth rejects requests whose token does not pass guard. The
// identity is attached to the request context for the pipelines.
func RequireAuth(guard *auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := guard.Check(c.Request.Context(), c.Request.Header, c.FullPath(), c.Request.Method)
		if err != nil {
			status, apiErr := authStatus(err)
			respondError(c, status, apiErr)
			return
		}
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// LimitBody caps request bodies at n bytes.
func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
