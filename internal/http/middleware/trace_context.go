package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/constella-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxClientIDLen = 128
)

// AttachTraceContext stamps every request with a trace id and a request id
// and echoes both back as response headers. An active otel span wins over
// a client supplied trace id.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := ctxutil.Trace{
			TraceID:   spanTraceID(c),
			RequestID: clientID(c, headerRequestID),
		}
		if t.TraceID == "" {
			t.TraceID = clientID(c, headerTraceID)
		}
		if t.TraceID == "" {
			t.TraceID = uuid.NewString()
		}
		if t.RequestID == "" {
			t.RequestID = uuid.NewString()
		}

		c.Request = c.Request.WithContext(ctxutil.WithTrace(c.Request.Context(), t))
		c.Header(headerTraceID, t.TraceID)
		c.Header(headerRequestID, t.RequestID)
		c.Next()
	}
}

func spanTraceID(c *gin.Context) string {
	sc := trace.SpanContextFromContext(c.Request.Context())
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// clientID accepts a caller supplied id only if it is short and printable.
func clientID(c *gin.Context, header string) string {
	v := strings.TrimSpace(c.GetHeader(header))
	if len(v) > maxClientIDLen {
		return ""
	}
	for _, r := range v {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return v
}
