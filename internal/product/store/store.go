// Package store provides an interface for product storage operations.
package store

import (
	"context"

	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/store/db"
	"github.com/shopspring/decimal"
)

// PriceScale and PricePrecision describe the numeric(18,2) price column.
const (
	PriceScale     = 2
	PricePrecision = 18
)

var priceLimit = decimal.New(1, PricePrecision-PriceScale)

// CheckPrice reports whether price can be stored unchanged in the price column.
// Values are never rounded: more than PriceScale decimal places is an error.
func CheckPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return perrors.ErrNegativePrice
	}
	if price.GreaterThanOrEqual(priceLimit) || !price.Equal(price.Truncate(PriceScale)) {
		return perrors.ErrInvalidPrice
	}
	return nil
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
// Implementations own the concurrency token: Update and DeleteByID compare the supplied version
// with the stored one and refuse stale writes.
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int32) (*db.Product, error)

	// FindAll returns all products ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]db.Product, error)

	// FindPage returns up to limit products ordered by ID, skipping the first offset.
	// Returns an empty slice when the page lies past the end.
	FindPage(ctx context.Context, offset, limit int32) ([]db.Product, error)

	// Create adds a new product and returns it with the assigned ID and initial version.
	Create(ctx context.Context, params db.CreateParams) (*db.Product, error)

	// Update overwrites the mutable fields of a product.
	// Returns ErrProductNotFound if the product is gone and ErrConcurrencyConflict if params.Version is stale.
	Update(ctx context.Context, params db.UpdateParams) (*db.Product, error)

	// DeleteByID removes a product.
	// Returns ErrProductNotFound if the product is gone and ErrConcurrencyConflict if version is stale.
	DeleteByID(ctx context.Context, id int32, version int32) error
}
