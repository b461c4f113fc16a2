package ctxutil

import "context"

type traceKey struct{}

// Trace identifies one request in logs and response headers.
type Trace struct {
	TraceID   string
	RequestID string
}

func WithTrace(ctx context.Context, t Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

func TraceFrom(ctx context.Context) (Trace, bool) {
	if ctx == nil {
		return Trace{}, false
	}
	t, ok := ctx.Value(traceKey{}).(Trace)
	return t, ok
}

// LogFields returns the non-empty ids as logger key/value pairs.
func (t Trace) LogFields() []interface{} {
	var kv []interface{}
	if t.TraceID != "" {
		kv = append(kv, "trace_id", t.TraceID)
	}
	if t.RequestID != "" {
		kv = append(kv, "request_id", t.RequestID)
	}
	return kv
}
