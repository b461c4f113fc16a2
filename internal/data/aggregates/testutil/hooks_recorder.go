package testutil

import (
	"sync"

	"github.com/yungbote/constella-backend/internal/data/aggregates"
)

// HooksRecorder keeps every write event it sees. Safe for concurrent writers.
type HooksRecorder struct {
	mu     sync.Mutex
	events []aggregates.WriteEvent
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveWrite(ev aggregates.WriteEvent) {
	h.mu.Lock()
	h.events = append(h.events, ev)
	h.mu.Unlock()
}

func (h *HooksRecorder) Events() []aggregates.WriteEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]aggregates.WriteEvent(nil), h.events...)
}

// Ghosts lists the ops of events that left a graph projection behind.
func (h *HooksRecorder) Ghosts() []string {
	var out []string
	for _, ev := range h.Events() {
		if ev.Ghost {
			out = append(out, ev.Op)
		}
	}
	return out
}

// CountStatus returns how many events for op ended with status.
func (h *HooksRecorder) CountStatus(op, status string) int {
	n := 0
	for _, ev := range h.Events() {
		if ev.Op == op && ev.Status() == status {
			n++
		}
	}
	return n
}
