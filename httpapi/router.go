package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonwraymond/contentgate/auth"
	"github.com/jonwraymond/contentgate/health"
	"github.com/jonwraymond/contentgate/observe"
)

// DefaultMaxBodyBytes bounds request bodies when RouterConfig leaves it zero.
const DefaultMaxBodyBytes = 1 << 20

var (
	// ErrNilPipelines indicates RouterConfig.Pipelines is nil.
	ErrNilPipelines = errors.New("httpapi: pipelines are nil")

	// ErrNilGuard indicates RouterConfig.Guard is nil.
	ErrNilGuard = errors.New("httpapi: guard is nil")
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Pipelines Pipelines
	Guard     *auth.Guard
	Logger    observe.Logger

	// Health mounts /healthz, /readyz and /health when set.
	Health *health.Aggregator

	// Metrics is served at /metrics when set.
	Metrics http.Handler

	MaxBodyBytes int64
}

// NewRouter builds the gin engine.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Pipelines == nil {
		return nil, ErrNilPipelines
	}
	if cfg.Guard == nil {
		return nil, ErrNilGuard
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(cfg.Logger))

	if cfg.Health != nil {
		health.RegisterRoutes(r, cfg.Health)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	h := NewHandler(cfg.Pipelines, cfg.Logger)
	api := r.Group("/api/ai", LimitBody(cfg.MaxBodyBytes), RequireAuth(cfg.Guard))
	api.POST("/generate", h.Generate)
	api.POST("/refine", h.Refine)
	api.POST("/outline", h.Outline)
	api.POST("/alt-text", h.AltText)
	api.GET("/usage-stats", h.UsageStats)

	return r, nil
}
