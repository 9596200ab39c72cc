package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joyeria/backend/internal/domain/shared"
)

// MockEventHandler records every event it receives so tests can assert
// on delivery order and count. Safe for concurrent delivery.
type MockEventHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewMockEventHandler subscribes the mock to the given event types.
func NewMockEventHandler(eventTypes ...string) *MockEventHandler {
	return &MockEventHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

// EventTypes reports the subscribed event types.
func (h *MockEventHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle records the event and returns the configured error, if any.
func (h *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of every recorded event.
func (h *MockEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]shared.DomainEvent, len(h.handled))
	copy(result, h.handled)
	return result
}

// HandledCount returns how many events the mock has seen.
func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// SetError makes subsequent Handle calls fail with err.
func (h *MockEventHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Reset clears recorded events and the configured error.
func (h *MockEventHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = make([]shared.DomainEvent, 0)
	h.err = nil
}

// StubEvent is a minimal domain event for exercising buses and handlers.
type StubEvent struct {
	shared.BaseDomainEvent
	OrderNumber string
}

// NewStubEvent builds a stub event with a fresh event id.
func NewStubEvent(eventType string) *StubEvent {
	return NewStubEventWithID(uuid.New(), eventType)
}

// NewStubEventWithID builds a stub event carrying a caller-chosen event id,
// which idempotency tests use to replay the same delivery.
func NewStubEventWithID(eventID uuid.UUID, eventType string) *StubEvent {
	return &StubEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:        eventID,
			Type:      eventType,
			Timestamp: time.Now(),
			AggID:     uuid.New(),
			AggType:   "Order",
		},
		OrderNumber: "NT-20260815-00001",
	}
}

// WaitForCondition polls condition until it holds or timeout expires,
// reporting whether it was met.
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()
	return pollUntil(condition, time.Now().Add(timeout), interval)
}

// WaitForEventCount waits until the handler has seen at least count events.
func WaitForEventCount(t *testing.T, handler *MockEventHandler, count int, timeout time.Duration) bool {
	t.Helper()

	return WaitForCondition(t, func() bool {
		return handler.HandledCount() >= count
	}, timeout, 10*time.Millisecond)
}
