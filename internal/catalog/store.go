package catalog

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("entity not found")

// Product ids are assigned by the caller and are not required to be unique.
type Product struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Store holds the catalog. Lookups by id return the first product inserted
// with that id.
type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int) (Product, bool, error)
	Add(ctx context.Context, p Product) error
	// RecordEvent appends " evt: <label>" to the stored product's current
	// name. It returns ErrNotFound if no product has p.ID.
	RecordEvent(ctx context.Context, p Product, label string) error
}

func SeedProducts() []Product {
	return []Product{
		{ID: 1, Name: "Test Product 1"},
		{ID: 2, Name: "Test Product 2"},
		{ID: 3, Name: "Test Product 3"},
	}
}

func eventName(current, label string) string {
	return fmt.Sprintf("%s evt: %s", current, label)
}
