package mediator

import (
	"context"
	"fmt"
)

// Register binds a typed handler to the kind reported by M's zero value.
func Register[M Message, R any](m *Mediator, h func(ctx context.Context, msg M) (R, error)) error {
	var zero M
	kind := zero.Kind()

	return m.RegisterRaw(kind, func(ctx context.Context, raw Message) (any, error) {
		msg, ok := raw.(M)
		if !ok {
			return nil, fmt.Errorf("%w: %s got %T", ErrUnexpectedMessage, kind, raw)
		}
		return h(ctx, msg)
	})
}

// Subscribe adds a typed subscriber for N's kind.
func Subscribe[N Message](m *Mediator, name string, fn func(ctx context.Context, n N) error) error {
	var zero N
	kind := zero.Kind()

	return m.SubscribeRaw(kind, name, func(ctx context.Context, raw Message) error {
		n, ok := raw.(N)
		if !ok {
			return fmt.Errorf("%w: %s got %T", ErrUnexpectedMessage, kind, raw)
		}
		return fn(ctx, n)
	})
}

// Send dispatches msg and asserts the handler's result to R. A nil result
// yields R's zero value.
func Send[R any](ctx context.Context, m *Mediator, msg Message) (R, error) {
	var zero R

	res, err := m.Send(ctx, msg)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}

	out, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T, want %T", ErrUnexpectedResult, msg.Kind(), res, zero)
	}
	return out, nil
}
