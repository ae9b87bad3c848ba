// Package mediator routes queries and commands to a single handler and
// broadcasts notifications to every subscriber registered for their kind.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrNoHandler         = errors.New("no handler registered")
	ErrDuplicateHandler  = errors.New("handler already registered")
	ErrEmptyKind         = errors.New("empty message kind")
	ErrUnexpectedMessage = errors.New("unexpected message type")
	ErrUnexpectedResult  = errors.New("unexpected result type")
	ErrSubscriberPanic   = errors.New("subscriber panicked")
)

// Message is anything that can be dispatched. Kind must be defined on the
// value receiver so a zero value reports the routing key.
type Message interface {
	Kind() string
}

type HandlerFunc func(ctx context.Context, msg Message) (any, error)

type SubscriberFunc func(ctx context.Context, n Message) error

// Middleware wraps every Send.
type Middleware func(next HandlerFunc) HandlerFunc

type subscriber struct {
	name string
	fn   SubscriberFunc
}

type Mediator struct {
	mu          sync.RWMutex
	handlers    map[string]HandlerFunc
	subscribers map[string][]subscriber

	log        *zap.Logger
	middleware []Middleware
	metrics    *Metrics
}

type Option func(*Mediator)

func WithLogger(log *zap.Logger) Option {
	return func(m *Mediator) {
		if log != nil {
			m.log = log
		}
	}
}

// WithMiddleware appends to the chain; the first one given is the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(m *Mediator) {
		m.middleware = append(m.middleware, mw...)
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(m *Mediator) {
		m.metrics = metrics
	}
}

func New(opts ...Option) *Mediator {
	m := &Mediator{
		handlers:    make(map[string]HandlerFunc),
		subscribers: make(map[string][]subscriber),
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.metrics != nil {
		m.middleware = append([]Middleware{m.metrics.Middleware()}, m.middleware...)
	}
	return m
}

// RegisterRaw binds the single handler for kind.
func (m *Mediator) RegisterRaw(kind string, h HandlerFunc) error {
	if kind == "" {
		return ErrEmptyKind
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.handlers[kind]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, kind)
	}
	m.handlers[kind] = m.chain(h)
	return nil
}

func (m *Mediator) chain(h HandlerFunc) HandlerFunc {
	for i := len(m.middleware) - 1; i >= 0; i-- {
		h = m.middleware[i](h)
	}
	return h
}

// SubscribeRaw adds a subscriber for kind. Any number may be registered.
func (m *Mediator) SubscribeRaw(kind, name string, fn SubscriberFunc) error {
	if kind == "" {
		return ErrEmptyKind
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.subscribers[kind] = append(m.subscribers[kind], subscriber{name: name, fn: fn})
	return nil
}

// Send invokes the handler registered for msg's kind and returns its result.
func (m *Mediator) Send(ctx context.Context, msg Message) (any, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: <nil>", ErrNoHandler)
	}

	m.mu.RLock()
	h, ok := m.handlers[msg.Kind()]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s (%T)", ErrNoHandler, msg.Kind(), msg)
	}
	return h(ctx, msg)
}

// Publish runs every subscriber for n's kind. A failing or panicking
// subscriber does not stop the others; all failures are combined into the
// returned error. Subscriber order is not part of the contract.
func (m *Mediator) Publish(ctx context.Context, n Message) error {
	if n == nil {
		return nil
	}

	m.mu.RLock()
	subs := append([]subscriber(nil), m.subscribers[n.Kind()]...)
	m.mu.RUnlock()

	var errs error
	for _, s := range subs {
		if err := m.invoke(ctx, s, n); err != nil {
			m.log.Warn("subscriber failed",
				zap.String("kind", n.Kind()),
				zap.String("subscriber", s.name),
				zap.Error(err),
			)
			if m.metrics != nil {
				m.metrics.SubscriberFailures.WithLabelValues(n.Kind(), s.name).Inc()
			}
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errs
}

func (m *Mediator) invoke(ctx context.Context, s subscriber, n Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSubscriberPanic, r)
		}
	}()
	return s.fn(ctx, n)
}

// Kinds returns the sorted query/command kinds that have a handler.
func (m *Mediator) Kinds() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.handlers))
	for k := range m.handlers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Subscribers returns the subscriber names registered for kind.
func (m *Mediator) Subscribers(kind string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := m.subscribers[kind]
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.name)
	}
	return out
}
