// Package events provides a lossy in-process event exchange: events are
// delivered to all subscribers and delivery failures are logged and
// ignored, never propagated to the emitter.
package events

import (
	"fmt"
	"log/slog"
	"sync"
)

// Canonical event names emitted by the ticket engine.
const (
	TicketCreated   = "ticket.created"
	TicketUpdated   = "ticket.updated"
	AttachmentAdded = "attachment.added"
)

// Handler is a subscriber callback. A non-nil return is treated as a
// delivery failure: logged, then dropped.
type Handler func(payload interface{}) error

// Exchange delivers events to all subscribers of a name. Safe for
// concurrent use.
type Exchange struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	logger      *slog.Logger
}

// NewExchange creates an Exchange. A nil logger falls back to
// slog.Default().
func NewExchange(logger *slog.Logger) *Exchange {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exchange{
		subscribers: make(map[string][]Handler),
		logger:      logger,
	}
}

// Subscribe registers a handler to be called for each event emitted
// under the given name.
func (e *Exchange) Subscribe(name string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers[name] = append(e.subscribers[name], h)
}

// Emit delivers payload to every subscriber of name. Emit always
// returns: a subscriber that errors or panics is logged and the
// remaining subscribers still receive the event.
func (e *Exchange) Emit(name string, payload interface{}) {
	e.mu.RLock()
	handlers := e.subscribers[name]
	e.mu.RUnlock()

	for _, h := range handlers {
		if err := deliver(h, payload); err != nil {
			e.logger.Warn("event delivery failed",
				"event", name,
				"error", err,
			)
		}
	}
}

func deliver(h Handler, payload interface{}) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("subscriber panic: %v", p)
		}
	}()
	return h(payload)
}
