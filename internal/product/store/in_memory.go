package store

import (
	"context"
	"slices"
	"sync"

	"github.com/abgdnv/productcatalog/internal/product/errors"
)

// inMemory implements ProductStore using an ordered slice.
type inMemory struct {
	mu       sync.RWMutex
	products []Product
	nextID   int64
}

// NewInMemoryStore creates a new instance of ProductStore holding the given products,
// which receive IDs 1..n in order.
func NewInMemoryStore(seed ...Fields) ProductStore {
	s := &inMemory{
		products: make([]Product, 0, len(seed)),
		nextID:   1,
	}
	for _, f := range seed {
		s.appendLocked(f)
	}
	return s
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.ErrProductNotFound
	}
	p := s.products[i]
	return &p, nil
}

// FindAll retrieves all products.
func (s *inMemory) FindAll(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.products), nil
}

// Create creates a new product and returns it.
func (s *inMemory) Create(_ context.Context, fields Fields) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.appendLocked(fields)
	return &p, nil
}

// Update overwrites the product's fields in place.
func (s *inMemory) Update(_ context.Context, id int64, fields Fields) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.ErrProductNotFound
	}
	s.products[i] = fields.product(id)
	p := s.products[i]
	return &p, nil
}

// DeleteByID deletes a product by its ID.
func (s *inMemory) DeleteByID(_ context.Context, id int64) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.ErrProductNotFound
	}
	removed := s.products[i]
	s.products = slices.Delete(s.products, i, i+1)
	return &removed, nil
}

// appendLocked assigns the next ID and appends. IDs come from a counter that never
// goes backwards, so a deleted product's ID is not handed out again.
func (s *inMemory) appendLocked(fields Fields) Product {
	p := fields.product(s.nextID)
	s.nextID++
	s.products = append(s.products, p)
	return p
}

func (s *inMemory) indexOf(id int64) int {
	return slices.IndexFunc(s.products, func(p Product) bool { return p.ID == id })
}

func (f Fields) product(id int64) Product {
	return Product{
		ID:          id,
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Category:    f.Category,
		InStock:     f.InStock,
	}
}
