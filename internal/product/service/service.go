// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	producterrors "github.com/abgdnv/productcatalog/internal/product/errors"
	"github.com/abgdnv/productcatalog/internal/product/store"
	"github.com/go-playground/validator/v10"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// FindAll returns one page of products, optionally narrowed to a category.
	FindAll(ctx context.Context, query ListQuery) (*ProductPage, error)

	// Create validates the payload and adds a new product.
	// Returns ErrInvalidProduct if the payload is malformed.
	Create(ctx context.Context, payload ProductPayload) (*ProductDto, error)

	// Update validates the payload and overwrites an existing product.
	// Returns ErrInvalidProduct before looking the product up, then ErrProductNotFound.
	Update(ctx context.Context, id int64, payload ProductPayload) (*ProductDto, error)

	// DeleteByID removes a product by its ID and returns it.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) (*ProductDto, error)

	// Search returns products whose name contains the term, ignoring case.
	Search(ctx context.Context, name string) ([]ProductDto, error)

	// Stats counts products per category.
	Stats(ctx context.Context) (map[string]int, error)
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	validate   *validator.Validate
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
		validate:   validator.New(),
	}
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     bool    `json:"inStock"`
}

// ProductPayload is the request body for create and update.
// Pointer fields tell a missing or null field apart from a zero value;
// JSON decoding rejects fields of the wrong type.
type ProductPayload struct {
	Name        *string  `json:"name"        validate:"required"`
	Description *string  `json:"description" validate:"required"`
	Price       *float64 `json:"price"       validate:"required"`
	Category    *string  `json:"category"    validate:"required"`
	InStock     *bool    `json:"inStock"     validate:"required"`
}

// UnmarshalJSON reads an object and takes each field only from its exact key.
// encoding/json would otherwise fill name from "NAME" or "Name".
func (p *ProductPayload) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out ProductPayload
	fields := []struct {
		key    string
		target any
	}{
		{"name", &out.Name},
		{"description", &out.Description},
		{"price", &out.Price},
		{"category", &out.Category},
		{"inStock", &out.InStock},
	}
	for _, f := range fields {
		value, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, f.target); err != nil {
			return fmt.Errorf("field %q: %w", f.key, err)
		}
	}
	*p = out
	return nil
}

// ListQuery narrows and windows a product listing.
// Zero Page or Limit means "not given": page 1, and a limit covering the whole filtered set.
type ListQuery struct {
	Category string
	Page     int
	Limit    int
}

// ProductPage is one window of a product listing.
type ProductPage struct {
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int          `json:"total"`
	Data  []ProductDto `json:"data"`
}

// ValidatePayload checks the payload shape and returns the fields to store.
func (s *Service) ValidatePayload(payload ProductPayload) (store.Fields, error) {
	if err := s.validate.Struct(payload); err != nil {
		return store.Fields{}, producterrors.ErrInvalidProduct
	}
	return store.Fields{
		Name:        *payload.Name,
		Description: *payload.Description,
		Price:       *payload.Price,
		Category:    *payload.Category,
		InStock:     *payload.InStock,
	}, nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return toDto(product), nil
}

// FindAll filters by category, then cuts the requested page out of the result.
func (s *Service) FindAll(ctx context.Context, query ListQuery) (*ProductPage, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	filtered := make([]ProductDto, 0, len(products))
	for i := range products {
		if query.Category != "" && !strings.EqualFold(products[i].Category, query.Category) {
			continue
		}
		filtered = append(filtered, *toDto(&products[i]))
	}

	page := query.Page
	if page == 0 {
		page = 1
	}
	limit := query.Limit
	if limit == 0 {
		limit = len(filtered)
	}
	start := (page - 1) * limit
	end := start + limit

	return &ProductPage{
		Page:  page,
		Limit: limit,
		Total: len(filtered),
		Data:  window(filtered, start, end),
	}, nil
}

// Create creates a new product and returns it as a ProductDto.
func (s *Service) Create(ctx context.Context, payload ProductPayload) (*ProductDto, error) {
	fields, err := s.ValidatePayload(payload)
	if err != nil {
		return nil, err
	}
	p, err := s.repository.Create(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toDto(p), nil
}

// Update overwrites every mutable field of a product.
func (s *Service) Update(ctx context.Context, id int64, payload ProductPayload) (*ProductDto, error) {
	fields, err := s.ValidatePayload(payload)
	if err != nil {
		return nil, err
	}
	p, err := s.repository.Update(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}
	return toDto(p), nil
}

// DeleteByID deletes a product by its ID.
func (s *Service) DeleteByID(ctx context.Context, id int64) (*ProductDto, error) {
	p, err := s.repository.DeleteByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	return toDto(p), nil
}

// Search matches the term as a case-insensitive substring of the name.
// An empty term matches every product.
func (s *Service) Search(ctx context.Context, name string) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	term := strings.ToLower(name)
	matches := make([]ProductDto, 0, len(products))
	for i := range products {
		if strings.Contains(strings.ToLower(products[i].Name), term) {
			matches = append(matches, *toDto(&products[i]))
		}
	}
	return matches, nil
}

// Stats counts products per category, keyed by the exact category text.
func (s *Service) Stats(ctx context.Context) (map[string]int, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute product stats: %w", err)
	}
	stats := make(map[string]int)
	for _, p := range products {
		stats[p.Category]++
	}
	return stats, nil
}

// window returns list[start:end] clamped to the list bounds.
func window(list []ProductDto, start, end int) []ProductDto {
	start = max(0, min(start, len(list)))
	end = max(start, min(end, len(list)))
	return list[start:end]
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		InStock:     product.InStock,
	}
}
