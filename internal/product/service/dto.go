package service

import (
	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/store"
	"github.com/abgdnv/catalog/internal/product/store/db"
	"github.com/shopspring/decimal"
)

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name        *string          `json:"name"        validate:"omitempty,max=30"`
	Description *string          `json:"description" validate:"omitempty,max=100"`
	Category    *string          `json:"category"    validate:"omitempty,max=30"`
	Price       *decimal.Decimal `json:"price"       validate:"omitempty,min=0"`
	Stock       int32            `json:"stock"       validate:"min=0"`
}

// ProductDto represents the data transfer object for a product.
// Version is set by the store and used for optimistic concurrency control;
// clients may echo it back on update to guard against lost updates.
type ProductDto struct {
	ID          int32            `json:"id"`
	Name        *string          `json:"name"        validate:"omitempty,max=30"`
	Description *string          `json:"description" validate:"omitempty,max=100"`
	Category    *string          `json:"category"    validate:"omitempty,max=30"`
	Price       *decimal.Decimal `json:"price"       validate:"omitempty,min=0"`
	Stock       int32            `json:"stock"       validate:"min=0"`
	Version     int32            `json:"version"     validate:"min=0"`
}

// toDto converts a db.Product to a ProductDto.
func toDto(product *db.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Price:       fromNullDecimal(product.Price),
		Stock:       product.Stock,
		Version:     product.Version,
	}
}

func toDtos(products []db.Product) []ProductDto {
	productDTOs := make([]ProductDto, len(products))
	for i := range products {
		productDTOs[i] = *toDto(&products[i])
	}
	return productDTOs
}

func toCreateParams(product ProductCreateDto) db.CreateParams {
	return db.CreateParams{
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Price:       toNullDecimal(product.Price),
		Stock:       product.Stock,
	}
}

// toUpdateParams takes every mutable field from product; id and version come from the caller.
func toUpdateParams(id int32, product ProductDto, version int32) db.UpdateParams {
	return db.UpdateParams{
		ID:          id,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Price:       toNullDecimal(product.Price),
		Stock:       product.Stock,
		Version:     version,
	}
}

// withStock keeps every field of product except stock.
func withStock(product *db.Product, stock int32) db.UpdateParams {
	return db.UpdateParams{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Price:       product.Price,
		Stock:       stock,
		Version:     product.Version,
	}
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func fromNullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func checkInvariants(stock int32, price *decimal.Decimal) error {
	if stock < 0 {
		return perrors.ErrNegativeStock
	}
	if price != nil {
		return store.CheckPrice(*price)
	}
	return nil
}
