// Package events provides event bus infrastructure for decoupled,
// event-driven communication between modules.
package events

import (
	"context"
	"sync"

	"farmlink_backend/platform/logger"

	"go.uber.org/multierr"
)

// InMemoryBus is a simple in-process event bus. Publish dispatches handlers
// on their own goroutine; PublishSync runs them inline and collects errors.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for the given event name.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish dispatches the event to all registered handlers asynchronously.
// Handler errors are logged, not returned; async publication is fire-and-forget.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	registered := b.handlers[event.EventName()]
	b.mu.RUnlock()

	for _, h := range registered {
		handler := h
		go func() {
			// Detach from the request-scoped context so in-flight handlers
			// survive the originating HTTP request.
			if err := handler.Handle(context.WithoutCancel(ctx), event); err != nil && b.log != nil {
				b.log.Error("event handler failed", "event", event.EventName(), "error", err)
			}
		}()
	}
}

// PublishSync dispatches the event inline and returns the combined handler errors.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	registered := b.handlers[event.EventName()]
	b.mu.RUnlock()

	var combined error
	for _, handler := range registered {
		if err := handler.Handle(ctx, event); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	return combined
}

var _ Bus = (*InMemoryBus)(nil)
