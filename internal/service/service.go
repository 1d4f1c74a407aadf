// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abgdnv/catalog/internal/store"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int) (*ProductDto, error)

	// FindAll returns the catalog in insertion order.
	// A nil limit returns everything. Otherwise the first limit products are returned;
	// a negative limit drops that many products from the end.
	FindAll(ctx context.Context, limit *int) ([]ProductDto, error)

	// Create adds a new product to the catalog.
	// Returns ErrInvalidProduct or ErrDuplicateCode if the product is rejected.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update overwrites the given fields of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int, product ProductUpdateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository      store.ProductStore
	productsCreated metric.Int64Counter
	lookups         metric.Int64Counter
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	meter := otel.Meter("catalog-service")
	productsCreated, err := meter.Int64Counter("products_created", metric.WithDescription("Total number of created products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_created counter: %v", err))
	}
	lookups, err := meter.Int64Counter("product_lookups", metric.WithDescription("Product lookups by ID, by outcome"))
	if err != nil {
		panic(fmt.Sprintf("failed to create product_lookups counter: %v", err))
	}
	return &Service{
		repository:      repo,
		productsCreated: productsCreated,
		lookups:         lookups,
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Thumbnail   string          `json:"thumbnail"`
	Code        string          `json:"code"`
	Stock       decimal.Decimal `json:"stock"`
}

// ProductUpdateDto carries the fields to overwrite. Nil fields are left unchanged.
type ProductUpdateDto struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Thumbnail   *string          `json:"thumbnail,omitempty"`
	Code        *string          `json:"code,omitempty"`
	Stock       *decimal.Decimal `json:"stock,omitempty"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Thumbnail   string          `json:"thumbnail"`
	Code        string          `json:"code"`
	Stock       decimal.Decimal `json:"stock"`
}

// MarshalJSON writes price and stock as bare JSON numbers.
func (p ProductDto) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          int         `json:"id"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
		Price       json.Number `json:"price"`
		Thumbnail   string      `json:"thumbnail"`
		Code        string      `json:"code"`
		Stock       json.Number `json:"stock"`
	}{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       json.Number(p.Price.String()),
		Thumbnail:   p.Thumbnail,
		Code:        p.Code,
		Stock:       json.Number(p.Stock.String()),
	})
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id int) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		s.lookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("found", false)))
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	s.lookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("found", true)))

	return toDto(product), nil
}

// FindAll retrieves the catalog, cut at limit when one is given.
// Returns an empty slice if no products exist or error if the retrieval fails.
func (s *Service) FindAll(ctx context.Context, limit *int) ([]ProductDto, error) {
	products, err := s.repository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	if limit != nil {
		products = products[:cutoff(len(products), *limit)]
	}
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return productDTOs, nil
}

// Create creates a new product and returns it as a ProductDto.
// Returns an error if the product cannot be created.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	p, err := s.repository.Add(ctx, store.Product{
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Thumbnail:   product.Thumbnail,
		Code:        product.Code,
		Stock:       product.Stock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.productsCreated.Add(ctx, 1)

	return toDto(p), nil
}

// Update modifies an existing product's details and returns the updated product as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) Update(ctx context.Context, id int, product ProductUpdateDto) (*ProductDto, error) {
	updated, err := s.repository.Update(ctx, id, store.ProductPatch{
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Thumbnail:   product.Thumbnail,
		Code:        product.Code,
		Stock:       product.Stock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}

	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) DeleteByID(ctx context.Context, id int) error {
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	return nil
}

// cutoff returns the end index of the first limit elements out of n.
// Negative limits count back from n.
func cutoff(n, limit int) int {
	if limit < 0 {
		return max(n+limit, 0)
	}
	return min(limit, n)
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Thumbnail:   product.Thumbnail,
		Code:        product.Code,
		Stock:       product.Stock,
	}
}
