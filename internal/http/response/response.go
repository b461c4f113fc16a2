package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
	"github.com/yungbote/constella-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Retry   bool   `json:"retry,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondData wraps payload as {"success": true, "data": payload}.
func RespondData(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": payload})
}

// RespondServiceError renders an error from the service layer. Internal
// failures are reported without their cause.
func RespondServiceError(c *gin.Context, err error) {
	status, code, msg := Classify(err)
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
			Retry:   domainknowledge.Retryable(err),
		},
	})
}

// Classify maps err to an HTTP status, an error code and a public message.
func Classify(err error) (int, string, string) {
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status, ae.Code, ae.Error()
	}
	if errors.Is(err, domainknowledge.ErrGenerationRateLimited) {
		return http.StatusTooManyRequests, "rate_limited", "too many generation requests; try again shortly"
	}
	switch domainknowledge.Classify(err) {
	case domainknowledge.FailureBadInput:
		return http.StatusBadRequest, "invalid_request", err.Error()
	case domainknowledge.FailureNotFound:
		return http.StatusNotFound, "topic_not_found", "topic not found"
	case domainknowledge.FailureForbidden:
		return http.StatusForbidden, "undiscovered_topic", "topic not discovered yet"
	case domainknowledge.FailureTransient:
		return http.StatusServiceUnavailable, "try_again", "the archive is busy; try again"
	case domainknowledge.FailureBadUpstream:
		return http.StatusInternalServerError, "generation_failed", "could not generate an answer"
	default:
		return http.StatusInternalServerError, "internal_error", "internal error"
	}
}
