package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ProductCatalog/internal/mediator"
)

const (
	LabelCacheInvalidated = "Cache Invalidated"
	LabelEmailSent        = "Email sent"

	SubscriberCacheInvalidation = "cache_invalidation"
	SubscriberEmail             = "email"
	SubscriberForward           = "forward"

	cacheKeyList          = "catalog:products"
	cacheKeyProductPrefix = "catalog:product:"
)

// Invalidator drops cache entries derived from the catalog.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context, ...string) error { return nil }

// EventPublisher ships integration events to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}

type SubscriberDeps struct {
	Store       Store
	Invalidator Invalidator
	// Publisher is optional; the forward subscriber is only registered when set.
	Publisher EventPublisher
	Log       *zap.Logger
	Now       func() time.Time
}

type Subscribers struct {
	deps SubscriberDeps
}

func RegisterSubscribers(m *mediator.Mediator, deps SubscriberDeps) error {
	if deps.Invalidator == nil {
		deps.Invalidator = NopInvalidator{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Subscribers{deps: deps}

	if err := mediator.Subscribe(m, SubscriberCacheInvalidation, s.CacheInvalidation); err != nil {
		return err
	}
	if err := mediator.Subscribe(m, SubscriberEmail, s.Email); err != nil {
		return err
	}
	if deps.Publisher != nil {
		return mediator.Subscribe(m, SubscriberForward, s.Forward)
	}
	return nil
}

func (s *Subscribers) CacheInvalidation(ctx context.Context, n ProductAdded) error {
	if err := s.deps.Store.RecordEvent(ctx, n.Product, LabelCacheInvalidated); err != nil {
		return err
	}
	return s.deps.Invalidator.Invalidate(ctx, cacheKeyList, ProductCacheKey(n.Product.ID))
}

func (s *Subscribers) Email(ctx context.Context, n ProductAdded) error {
	if err := s.deps.Store.RecordEvent(ctx, n.Product, LabelEmailSent); err != nil {
		return err
	}
	s.deps.Log.Info("product added email recorded", zap.Int("product_id", n.Product.ID))
	return nil
}

// IntegrationEvent is the payload written by the forward subscriber.
type IntegrationEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Product    Product   `json:"product"`
}

func (s *Subscribers) Forward(ctx context.Context, n ProductAdded) error {
	payload, err := json.Marshal(IntegrationEvent{
		EventID:    uuid.NewString(),
		EventType:  KindProductAdded,
		OccurredAt: s.deps.Now().UTC(),
		Product:    n.Product,
	})
	if err != nil {
		return fmt.Errorf("encode product added event: %w", err)
	}
	return s.deps.Publisher.Publish(ctx, KindProductAdded, payload, strconv.Itoa(n.Product.ID))
}

func ProductCacheKey(id int) string {
	return cacheKeyProductPrefix + strconv.Itoa(id)
}
