package catalog

import (
	"context"
	"fmt"
	"sync"
)

// MemStore keeps products in insertion order. Every operation runs under a
// single lock, so mutations are totally ordered and visible to later reads.
type MemStore struct {
	mu       sync.RWMutex
	products []Product
}

func NewMemStore() *MemStore {
	return NewMemStoreWith(SeedProducts())
}

func NewMemStoreWith(products []Product) *MemStore {
	return &MemStore{products: append([]Product(nil), products...)}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id int) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, false, nil
	}
	return s.products[i], true, nil
}

func (s *MemStore) Add(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append(s.products, p)
	return nil
}

func (s *MemStore) RecordEvent(ctx context.Context, p Product, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(p.ID)
	if i < 0 {
		return fmt.Errorf("%w: product id=%d", ErrNotFound, p.ID)
	}
	s.products[i].Name = eventName(s.products[i].Name, label)
	return nil
}

// indexOf must be called with mu held.
func (s *MemStore) indexOf(id int) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}
