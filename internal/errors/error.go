// Package errors provides custom error types for product-related operations.
package errors

import "errors"

// ErrProductNotFound is returned when no product has the requested ID.
var ErrProductNotFound = errors.New("product not found")

// ErrInvalidProduct is returned when a required product field is missing or zero.
var ErrInvalidProduct = errors.New("all product fields are required")

// ErrDuplicateCode is returned when a product code is already in use.
var ErrDuplicateCode = errors.New("product code already exists")

// ErrStorage is returned when the product snapshot cannot be read or written.
var ErrStorage = errors.New("product storage unavailable")

// ErrCorruptStorage is returned when the product snapshot cannot be decoded.
var ErrCorruptStorage = errors.New("product storage is corrupt")
