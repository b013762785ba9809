package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonwraymond/contentgate/auth"
	"github.com/jonwraymond/contentgate/gateway"
	"github.com/jonwraymond/contentgate/upstream"
)

// Error codes carried in APIError.Code.
const (
	CodeInvalidBody    = "invalid_body"
	CodeBodyTooLarge   = "body_too_large"
	CodeInvalidRequest = "invalid_request"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeInternal       = "internal_error"
)

// APIError is the body of every error response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

// ErrorEnvelope wraps APIError.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, apiErr APIError) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: apiErr})
}

// upstreamStatus maps a failure kind to the response status.
func upstreamStatus(k upstream.Kind) int {
	switch k {
	case upstream.KindTimeout:
		return http.StatusGatewayTimeout
	case upstream.KindAuth:
		return http.StatusBadGateway
	case upstream.KindRateLimited:
		return http.StatusTooManyRequests
	case upstream.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// classify converts a pipeline error into a status and body. The boolean
// is false for errors that are not part of the API contract.
func classify(err error) (int, APIError, bool) {
	var ve *gateway.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, APIError{
			Message: "invalid " + ve.Field + ": " + ve.Message,
			Code:    CodeInvalidRequest,
			Field:   ve.Field,
		}, true
	}

	var ue *upstream.Error
	if errors.As(err, &ue) {
		return upstreamStatus(ue.Kind), APIError{
			Message: ue.Kind.Message(),
			Code:    string(ue.Kind),
		}, true
	}

	return http.StatusInternalServerError, APIError{
		Message: "internal server error",
		Code:    CodeInternal,
	}, false
}

// authStatus maps a Guard failure to 401, 403 or 500.
func authStatus(err error) (int, APIError) {
	switch {
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, APIError{Message: "admin role required", Code: CodeForbidden}
	case errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenMalformed):
		return http.StatusUnauthorized, APIError{Message: "missing or invalid token", Code: CodeUnauthorized}
	default:
		return http.StatusInternalServerError, APIError{Message: "internal server error", Code: CodeInternal}
	}
}
