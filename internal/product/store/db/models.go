package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a row of the products table.
// Version is the optimistic concurrency token, bumped on every successful write.
type Product struct {
	ID          int32               `json:"id"`
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Category    *string             `json:"category"`
	Price       decimal.NullDecimal `json:"price"`
	Stock       int32               `json:"stock"`
	Version     int32               `json:"version"`
	CreatedAt   *time.Time          `json:"created_at"`
	UpdatedAt   *time.Time          `json:"updated_at"`
}
