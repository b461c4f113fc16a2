package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainknowledge "github.com/yungbote/constella-backend/internal/domain/knowledge"
	"github.com/yungbote/constella-backend/internal/platform/apierr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: empty", domainknowledge.ErrInvalidQuery), http.StatusBadRequest, "invalid_request"},
		{domainknowledge.ErrTopicNotFound, http.StatusNotFound, "topic_not_found"},
		{domainknowledge.ErrTopicUndiscovered, http.StatusForbidden, "undiscovered_topic"},
		{fmt.Errorf("%w: 503", domainknowledge.ErrGeneratorUnavailable), http.StatusServiceUnavailable, "try_again"},
		{fmt.Errorf("%w: x", domainknowledge.ErrSagaAborted), http.StatusServiceUnavailable, "try_again"},
		{domainknowledge.ErrGenerationRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{&domainknowledge.MalformedOutputError{Raw: "x"}, http.StatusInternalServerError, "generation_failed"},
		{apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("no token")), http.StatusUnauthorized, "unauthorized"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range tests {
		status, code, _ := Classify(tc.err)
		if status != tc.status || code != tc.code {
			t.Fatalf("Classify(%v): want=%d/%s got=%d/%s", tc.err, tc.status, tc.code, status, code)
		}
	}
}

func TestRespondServiceErrorHidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondServiceError(c, errors.New("pq: password authentication failed"))

	var body ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusInternalServerError || body.Error.Message != "internal error" || body.Error.Retry {
		t.Fatalf("unexpected response: status=%d body=%+v", rec.Code, body)
	}
}
