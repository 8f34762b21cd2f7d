// Package store provides an interface for product storage operations.
package store

import "context"

// Product represents a product entity in the store.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Category    string
	InStock     bool
}

// Fields holds the mutable attributes of a product, written on create and update.
type Fields struct {
	Name        string
	Description string
	Price       float64
	Category    string
	InStock     bool
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations.
// Implementations hand out copies; callers never hold references into the collection.
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll returns a snapshot of all products in insertion order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// Create appends a new product with a freshly assigned ID.
	Create(ctx context.Context, fields Fields) (*Product, error)

	// Update overwrites all mutable fields of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, fields Fields) (*Product, error)

	// DeleteByID removes a product by its ID and returns the removed product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) (*Product, error)
}

// SeedProducts returns the catalogue the service starts with.
func SeedProducts() []Fields {
	return []Fields{
		{Name: "Samsung", Description: "Smartphone", Price: 50000, Category: "Nangos", InStock: true},
		{Name: "Gen Zee Chronicles", Description: "Literature", Price: 5000, Category: "Kioo Cha Jamii", InStock: true},
		{Name: "Ndula", Description: "Simbaland", Price: 1000, Category: "Footwear", InStock: false},
	}
}
