package catalog

import (
	"context"

	"go.uber.org/zap"

	"ProductCatalog/internal/mediator"
)

type Handlers struct {
	Store Store
	Bus   *mediator.Mediator
	Log   *zap.Logger
}

func RegisterHandlers(m *mediator.Mediator, store Store, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handlers{Store: store, Bus: m, Log: log}

	if err := mediator.Register(m, h.GetProducts); err != nil {
		return err
	}
	if err := mediator.Register(m, h.GetProductByID); err != nil {
		return err
	}
	return mediator.Register(m, h.AddProduct)
}

func (h *Handlers) GetProducts(ctx context.Context, _ GetProducts) ([]Product, error) {
	return h.Store.List(ctx)
}

// GetProductByID returns nil, nil when the id is unknown.
func (h *Handlers) GetProductByID(ctx context.Context, q GetProductByID) (*Product, error) {
	p, ok, err := h.Store.Get(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// AddProduct stores the product and then runs every ProductAdded subscriber
// before returning. Subscriber failures are logged and do not fail the
// command; the caller gets back the product exactly as submitted.
func (h *Handlers) AddProduct(ctx context.Context, c AddProduct) (Product, error) {
	if err := h.Store.Add(ctx, c.Product); err != nil {
		return Product{}, err
	}

	if err := h.Bus.Publish(ctx, ProductAdded{Product: c.Product}); err != nil {
		h.Log.Warn("product added notification incomplete",
			zap.Int("product_id", c.Product.ID),
			zap.Error(err),
		)
	}

	return c.Product, nil
}

// NewBus returns a mediator with every catalog handler and subscriber
// registered against store.
func NewBus(store Store, deps SubscriberDeps, opts ...mediator.Option) (*mediator.Mediator, error) {
	m := mediator.New(opts...)
	deps.Store = store

	if err := RegisterHandlers(m, store, deps.Log); err != nil {
		return nil, err
	}
	if err := RegisterSubscribers(m, deps); err != nil {
		return nil, err
	}
	return m, nil
}
