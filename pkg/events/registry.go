package events

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/chainclient/pkg/logging"
)

// Handler receives decoded contract events. OnEvent runs on the subscriber
// goroutine and must not block for long.
type Handler interface {
	OnEvent(evt ContractEvent)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(evt ContractEvent)

func (f HandlerFunc) OnEvent(evt ContractEvent) {
	f(evt)
}

// Dispatcher delivers an event and reports how many handlers received it.
type Dispatcher interface {
	Dispatch(evt ContractEvent) int
}

// Dispatchers fans an event out to each Dispatcher in order.
type Dispatchers []Dispatcher

func (ds Dispatchers) Dispatch(evt ContractEvent) int {
	delivered := 0
	for _, d := range ds {
		delivered += d.Dispatch(evt)
	}
	return delivered
}

type registration struct {
	id      string
	handler Handler
}

// Registry is an ordered, concurrency-safe set of handlers. Handlers may be
// added or removed while events are being dispatched; a dispatch uses the
// handlers registered when it started.
type Registry struct {
	mu       sync.RWMutex
	handlers []registration
	logger   *logging.ColoredLogger
}

func NewRegistry(logger *logging.ColoredLogger) *Registry {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Registry{logger: logger}
}

// Register appends h and returns an ID for Unregister.
func (r *Registry) Register(h Handler) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.handlers = append(r.handlers, registration{id: id, handler: h})
	r.mu.Unlock()
	return id
}

// Unregister removes the handler registered under id.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, reg := range r.handlers {
		if reg.id == id {
			r.handlers = append(r.handlers[:i:i], r.handlers[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

func (r *Registry) snapshot() []registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]registration, len(r.handlers))
	copy(out, r.handlers)
	return out
}

// Dispatch delivers evt to every handler in registration order and returns
// how many handlers received it. A panicking handler is logged and skipped.
func (r *Registry) Dispatch(evt ContractEvent) int {
	delivered := 0
	for _, reg := range r.snapshot() {
		if r.deliver(reg, evt) {
			delivered++
		}
	}
	return delivered
}

func (r *Registry) deliver(reg registration, evt ContractEvent) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ComponentError(logging.ComponentEvents, "Event handler panicked",
				zap.String("handler_id", reg.id),
				zap.String("contract_id", evt.ContractID),
				zap.String("panic", fmt.Sprint(rec)))
			ok = false
		}
	}()
	reg.handler.OnEvent(evt)
	return true
}
