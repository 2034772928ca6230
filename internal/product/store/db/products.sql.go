package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, description, category, price, stock, version, created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }, i *Product) error {
	return row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Category,
		&i.Price,
		&i.Stock,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
}

const create = `
INSERT INTO products (name, description, category, price, stock)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + productColumns

type CreateParams struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Category    *string             `json:"category"`
	Price       decimal.NullDecimal `json:"price"`
	Stock       int32               `json:"stock"`
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (Product, error) {
	row := q.db.QueryRow(ctx, create,
		arg.Name,
		arg.Description,
		arg.Category,
		arg.Price,
		arg.Stock,
	)
	var i Product
	err := scanProduct(row, &i)
	return i, err
}

const findByID = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1`

func (q *Queries) FindByID(ctx context.Context, id int32) (Product, error) {
	row := q.db.QueryRow(ctx, findByID, id)
	var i Product
	err := scanProduct(row, &i)
	return i, err
}

const findAll = `
SELECT ` + productColumns + `
FROM products
ORDER BY id`

func (q *Queries) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, findAll)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[Product])
}

const findPage = `
SELECT ` + productColumns + `
FROM products
ORDER BY id
LIMIT $1 OFFSET $2`

type FindPageParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) FindPage(ctx context.Context, arg FindPageParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, findPage, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[Product])
}

const update = `
UPDATE products
SET name        = $2,
    description = $3,
    category    = $4,
    price       = $5,
    stock       = $6,
    version     = version + 1,
    updated_at  = now()
WHERE id = $1
  AND version = $7
RETURNING ` + productColumns

type UpdateParams struct {
	ID          int32               `json:"id"`
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Category    *string             `json:"category"`
	Price       decimal.NullDecimal `json:"price"`
	Stock       int32               `json:"stock"`
	Version     int32               `json:"version"`
}

func (q *Queries) Update(ctx context.Context, arg UpdateParams) (Product, error) {
	row := q.db.QueryRow(ctx, update,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Category,
		arg.Price,
		arg.Stock,
		arg.Version,
	)
	var i Product
	err := scanProduct(row, &i)
	return i, err
}

const deleteByID = `
DELETE FROM products
WHERE id = $1
  AND version = $2`

type DeleteParams struct {
	ID      int32 `json:"id"`
	Version int32 `json:"version"`
}

func (q *Queries) Delete(ctx context.Context, arg DeleteParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteByID, arg.ID, arg.Version)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const exists = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

func (q *Queries) Exists(ctx context.Context, id int32) (bool, error) {
	row := q.db.QueryRow(ctx, exists, id)
	var found bool
	err := row.Scan(&found)
	return found, err
}
