// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var (
	// ErrProductNotFound is returned when the referenced product id does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrInsufficientStock is returned when a stock decrease would drive stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrConcurrencyConflict is returned when a write carries a stale version.
	ErrConcurrencyConflict = errors.New("product was modified concurrently")

	// ErrPersistence wraps unexpected failures of the underlying store.
	ErrPersistence = errors.New("persistence failure")

	ErrNegativeStock   = errors.New("stock must not be negative")
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrInvalidPrice    = errors.New("price must have at most 2 decimal places and at most 16 integer digits")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrInvalidPage     = errors.New("page number and page size must be greater than zero")
)
