package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonwraymond/contentgate/gateway"
	"github.com/jonwraymond/contentgate/observe"
	"github.com/jonwraymond/contentgate/usage"
)

// Pipelines is the gateway surface served over HTTP. *gateway.Service
// implements it.
type Pipelines interface {
	Generate(ctx context.Context, req gateway.GenerationRequest) (*gateway.GenerationResult, error)
	Refine(ctx context.Context, req gateway.RefineRequest) (*gateway.RefineResult, error)
	Outline(ctx context.Context, req gateway.OutlineRequest) (*gateway.OutlineResult, error)
	AltText(ctx context.Context, req gateway.AltTextRequest) (*gateway.AltTextResult, error)
	UsageStats(ctx context.Context, filter usage.Filter) (usage.Stats, error)
}

var _ Pipelines = (*gateway.Service)(nil)

// Handler serves the /api/ai routes.
type Handler struct {
	svc Pipelines
	log observe.Logger
}

// NewHandler creates a handler. A nil logger discards output.
func NewHandler(svc Pipelines, log observe.Logger) *Handler {
	if log == nil {
		log = observe.NopLogger()
	}
	return &Handler{svc: svc, log: log}
}

// Generate handles POST /api/ai/generate.
func (h *Handler) Generate(c *gin.Context) { serveJSON(h, c, h.svc.Generate) }

// Refine handles POST /api/ai/refine.
func (h *Handler) Refine(c *gin.Context) { serveJSON(h, c, h.svc.Refine) }

// Outline handles POST /api/ai/outline.
func (h *Handler) Outline(c *gin.Context) { serveJSON(h, c, h.svc.Outline) }

// AltText handles POST /api/ai/alt-text.
func (h *Handler) AltText(c *gin.Context) { serveJSON(h, c, h.svc.AltText) }

// UsageStats handles GET /api/ai/usage-stats. startDate and endDate are
// YYYY-MM-DD in UTC; endDate includes the whole day.
func (h *Handler) UsageStats(c *gin.Context) {
	filter := usage.Filter{CourseID: c.Query("courseId")}

	if raw := c.Query("startDate"); raw != "" {
		start, err := time.Parse(usage.DateLayout, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, dateError("startDate"))
			return
		}
		filter.Start = start
	}
	if raw := c.Query("endDate"); raw != "" {
		end, err := time.Parse(usage.DateLayout, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, dateError("endDate"))
			return
		}
		filter.End = end.Add(24*time.Hour - time.Nanosecond)
	}
	if !filter.Start.IsZero() && !filter.End.IsZero() && filter.End.Before(filter.Start) {
		respondError(c, http.StatusBadRequest, APIError{
			Message: "invalid endDate: must not be before startDate",
			Code:    CodeInvalidRequest,
			Field:   "endDate",
		})
		return
	}

	stats, err := h.svc.UsageStats(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func dateError(field string) APIError {
	return APIError{
		Message: "invalid " + field + ": expected YYYY-MM-DD",
		Code:    CodeInvalidRequest,
		Field:   field,
	}
}

// serveJSON decodes the body into Req, runs call and writes the result.
func serveJSON[Req, Resp any](h *Handler, c *gin.Context, call func(context.Context, Req) (Resp, error)) {
	var req Req
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, APIError{
				Message: "request body too large",
				Code:    CodeBodyTooLarge,
			})
			return
		}
		respondError(c, http.StatusBadRequest, APIError{
			Message: "request body must be a JSON object",
			Code:    CodeInvalidBody,
		})
		return
	}

	resp, err := call(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, apiErr, known := classify(err)
	if !known {
		h.log.Error(c.Request.Context(), "unhandled error",
			observe.F("path", c.FullPath()),
			observe.F("error", err),
		)
	}
	respondError(c, status, apiErr)
}
