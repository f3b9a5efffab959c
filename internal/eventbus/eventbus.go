package eventbus

import (
	"reflect"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"

	"glsandbox/internal/metrics"
)

// EventType identifies an event category. Two values are equal exactly when
// they describe the same Go type, so EventType is safe to use as a map key.
type EventType struct {
	t reflect.Type
}

// TypeOf returns the identity of event category E
func TypeOf[E any]() EventType {
	return EventType{t: reflect.TypeFor[E]()}
}

// String returns the event category name
func (et EventType) String() string {
	if et.t == nil {
		return "<nil>"
	}
	return et.t.String()
}

// handler is the uniform entry point the bus dispatches through
type handler interface {
	invoke(event any)
}

// callback binds a receiver to a handler for one event category
type callback[R any, E any] struct {
	receiver R
	fn       func(R, *E)
}

func (c *callback[R, E]) invoke(event any) {
	c.fn(c.receiver, event.(*E))
}

type registration struct {
	id uint64
	h  handler
}

// Bus is a type-indexed publish/subscribe registry. Handlers run
// synchronously on the publishing goroutine, in registration order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]*registration
	nextID   uint64

	logger  zerolog.Logger
	metrics *metrics.Bus
}

// Option configures a Bus
type Option func(*Bus)

// WithLogger sets the logger used to report handler panics
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithMetrics enables prometheus accounting
func WithMetrics(m *metrics.Bus) Option {
	return func(b *Bus) {
		b.metrics = m
	}
}

// New creates a new event bus
func New(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[EventType][]*registration),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription is a handle to one registration
type Subscription struct {
	bus       *Bus
	eventType EventType
	id        uint64
}

// EventType returns the category the subscription listens to
func (s Subscription) EventType() EventType {
	return s.eventType
}

// Unsubscribe removes the registration. Calling it again is a no-op.
func (s Subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	s.bus.remove(s.eventType, s.id)
}

// Subscribe registers fn to be called with receiver for every published E.
// The receiver is referenced, not owned; it must stay usable for as long as
// the registration exists.
func Subscribe[E any, R any](b *Bus, receiver R, fn func(R, *E)) Subscription {
	et := TypeOf[E]()
	return b.add(et, &callback[R, E]{receiver: receiver, fn: fn})
}

// SubscribeFunc registers a handler that needs no receiver
func SubscribeFunc[E any](b *Bus, fn func(*E)) Subscription {
	return Subscribe(b, fn, func(f func(*E), e *E) { f(e) })
}

// Publish delivers one instance of event to every handler registered for E.
// All handlers see the same instance, so a mutation made by one handler is
// visible to the handlers after it. The instance must not be retained once
// Publish returns.
func Publish[E any](b *Bus, event E) {
	ev := event
	b.dispatch(TypeOf[E](), &ev)
}

// PublishNew builds the event with build and publishes it. build runs
// exactly once, whether or not anyone is subscribed.
func PublishNew[E any](b *Bus, build func() E) {
	ev := build()
	b.dispatch(TypeOf[E](), &ev)
}

// Reset clears every handler list
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.metrics != nil {
		for et := range b.handlers {
			b.metrics.Subscriptions.WithLabelValues(et.String()).Set(0)
		}
	}
	b.handlers = make(map[EventType][]*registration)
}

// HandlerCount returns the number of registrations for et
func (b *Bus) HandlerCount(et EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[et])
}

// Types returns the categories that currently have registrations
func (b *Bus) Types() []EventType {
	b.mu.RLock()
	defer b.mu.RUnlock()

	types := make([]EventType, 0, len(b.handlers))
	for et, list := range b.handlers {
		if len(list) > 0 {
			types = append(types, et)
		}
	}
	return types
}

func (b *Bus) add(et EventType, h handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	reg := &registration{id: b.nextID, h: h}
	b.handlers[et] = append(b.handlers[et], reg)

	if b.metrics != nil {
		b.metrics.Subscriptions.WithLabelValues(et.String()).Set(float64(len(b.handlers[et])))
	}
	return Subscription{bus: b, eventType: et, id: reg.id}
}

func (b *Bus) remove(et EventType, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.handlers[et]
	for i, reg := range list {
		if reg.id != id {
			continue
		}
		// Copy so a dispatch holding the old slice is unaffected
		next := make([]*registration, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(b.handlers, et)
		} else {
			b.handlers[et] = next
		}
		if b.metrics != nil {
			b.metrics.Subscriptions.WithLabelValues(et.String()).Set(float64(len(next)))
		}
		return
	}
}

func (b *Bus) dispatch(et EventType, event any) {
	b.mu.RLock()
	handlers := b.handlers[et]
	b.mu.RUnlock()

	if b.metrics != nil {
		b.metrics.Published.WithLabelValues(et.String()).Inc()
	}

	// The slice is never mutated in place, so iterating the snapshot is safe
	// even if a handler subscribes or unsubscribes.
	for _, reg := range handlers {
		b.invoke(et, reg, event)
	}
}

func (b *Bus) invoke(et EventType, reg *registration, event any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("event", et.String()).
				Uint64("handler", reg.id).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("event handler panicked")
			if b.metrics != nil {
				b.metrics.Panics.WithLabelValues(et.String()).Inc()
			}
		}
	}()

	if b.metrics != nil {
		b.metrics.Invoked.WithLabelValues(et.String()).Inc()
	}
	reg.h.invoke(event)
}
