// Package store provides the product catalog repository and the snapshot backends it persists to.
package store

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product represents a product entity in the store.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"       validate:"required"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"       validate:"required"`
	Thumbnail   string          `json:"thumbnail"   validate:"required"`
	Code        string          `json:"code"        validate:"required"`
	Stock       decimal.Decimal `json:"stock"       validate:"required"`
}

// MarshalJSON writes price and stock as bare JSON numbers.
func (p Product) MarshalJSON() ([]byte, error) {
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

// ProductPatch lists the fields to overwrite on update. Nil fields are left unchanged.
type ProductPatch struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Thumbnail   *string
	Code        *string
	Stock       *decimal.Decimal
}

// apply returns a copy of product with the non-nil patch fields merged in.
func (p ProductPatch) apply(product Product) Product {
	if p.Title != nil {
		product.Title = *p.Title
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Thumbnail != nil {
		product.Thumbnail = *p.Thumbnail
	}
	if p.Code != nil {
		product.Code = *p.Code
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	return product
}

// ProductStore is an interface for product storage operations.
// Every mutation is persisted to the underlying Snapshot before it returns.
type ProductStore interface {
	// Add validates and appends a new product, assigning it the next identifier.
	// Returns ErrInvalidProduct if a required field is missing or zero,
	// ErrDuplicateCode if the code is already used.
	Add(ctx context.Context, product Product) (*Product, error)

	// List returns all products in insertion order.
	// Returns an empty slice if no products exist.
	List(ctx context.Context) ([]Product, error)

	// FindByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int) (*Product, error)

	// Update merges the patch into an existing product without re-validating it.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int, patch ProductPatch) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int) error

	// Load replaces the collection with the persisted snapshot.
	// On failure the current collection is kept and ErrStorage or ErrCorruptStorage is returned.
	Load(ctx context.Context) error

	// Save overwrites the persisted snapshot with the current collection.
	Save(ctx context.Context) error
}

// Snapshot reads and writes the whole product collection at once.
type Snapshot interface {
	Read(ctx context.Context) ([]Product, error)
	Write(ctx context.Context, products []Product) error
}
