package aggregates

import (
	"time"

	domainagg "github.com/yungbote/constella-backend/internal/domain/aggregates"
	"github.com/yungbote/constella-backend/internal/observability"
)

// WriteEvent describes one finished aggregate write.
type WriteEvent struct {
	Op       string
	Code     domainagg.ErrorCode // empty on success
	Duration time.Duration
	// Ghost is set when the graph side committed and the relational side
	// did not.
	Ghost bool
}

func (e WriteEvent) Status() string {
	if e.Code == "" {
		return "success"
	}
	return string(e.Code)
}

type Hooks interface {
	ObserveWrite(ev WriteEvent)
}

// HooksFunc adapts a plain function to Hooks. A nil HooksFunc drops events.
type HooksFunc func(ev WriteEvent)

func (f HooksFunc) ObserveWrite(ev WriteEvent) {
	if f != nil {
		f(ev)
	}
}

// NewObservabilityHooks feeds write events into the aggregate metrics.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return HooksFunc(nil)
	}
	return HooksFunc(func(ev WriteEvent) {
		metrics.ObserveAggregateOperation(ev.Op, ev.Status(), ev.Duration)
		switch ev.Code {
		case domainagg.CodeConflict:
			metrics.IncAggregateConflict(ev.Op)
		case domainagg.CodeRetryable:
			metrics.IncAggregateRetry(ev.Op)
		}
		if ev.Ghost {
			metrics.IncGhostCommit(ev.Op)
		}
	})
}

func emit(hooks Hooks, op string, mapped error, started time.Time, ghost bool) {
	hooks.ObserveWrite(WriteEvent{
		Op:       op,
		Code:     domainagg.CodeOf(mapped),
		Duration: time.Since(started),
		Ghost:    ghost,
	})
}
