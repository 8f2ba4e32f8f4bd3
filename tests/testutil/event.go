package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stockroute/backend/internal/domain/shared"
)

// EventRecorder records the domain events it receives
type EventRecorder struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
}

// NewEventRecorder subscribes to the given event types, or all when empty
func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{eventTypes: eventTypes}
}

// EventTypes returns the event types this recorder subscribes to
func (r *EventRecorder) EventTypes() []string {
	return r.eventTypes
}

// Handle records an event
func (r *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handled = append(r.handled, event)
	return nil
}

// Handled returns a copy of the recorded events
func (r *EventRecorder) Handled() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.DomainEvent, len(r.handled))
	copy(out, r.handled)
	return out
}

// Count returns the number of recorded events
func (r *EventRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handled)
}

// WaitForCondition polls condition until it holds or timeout elapses
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return condition()
}

// WaitForEventCount waits until the recorder holds at least count events
func WaitForEventCount(t *testing.T, r *EventRecorder, count int, timeout time.Duration) bool {
	t.Helper()
	return WaitForCondition(t, func() bool { return r.Count() >= count }, timeout, 10*time.Millisecond)
}
