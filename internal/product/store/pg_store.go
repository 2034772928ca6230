package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/store/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgCheckViolation     = "23514"
	pgNumericOutOfRange  = "22003"
	stockCheckConstraint = "ck_products_stock_non_negative"
	priceCheckConstraint = "ck_products_price_non_negative"
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
	q  *db.Queries
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
		q:  db.New(dbp),
	}
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int32) (*db.Product, error) {
	product, err := p.q.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: failed to find product by ID: %w", perrors.ErrPersistence, err)
	}
	return &product, nil
}

// FindAll retrieves all products ordered by ID.
func (p *PgStore) FindAll(ctx context.Context) ([]db.Product, error) {
	products, err := p.q.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to find all products: %w", perrors.ErrPersistence, err)
	}
	return products, nil
}

// FindPage retrieves one page of products ordered by ID.
func (p *PgStore) FindPage(ctx context.Context, offset, limit int32) ([]db.Product, error) {
	products, err := p.q.FindPage(ctx, db.FindPageParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to find products page: %w", perrors.ErrPersistence, err)
	}
	return products, nil
}

// Create adds a new product to the system.
// Returns an error if the product cannot be created.
func (p *PgStore) Create(ctx context.Context, params db.CreateParams) (*db.Product, error) {
	product, err := p.q.Create(ctx, params)
	if err != nil {
		if cerr := checkViolation(err); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("%w: failed to create product: %w", perrors.ErrPersistence, err)
	}
	return &product, nil
}

// Update modifies an existing product's details if the stored version still equals params.Version.
// Returns ErrProductNotFound if no product exists with the given ID,
// ErrConcurrencyConflict if it exists with another version.
func (p *PgStore) Update(ctx context.Context, params db.UpdateParams) (*db.Product, error) {
	product, err := p.q.Update(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, p.missingOrStale(ctx, params.ID)
		}
		if cerr := checkViolation(err); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("%w: failed to update product: %w", perrors.ErrPersistence, err)
	}
	return &product, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID,
// ErrConcurrencyConflict if it exists with another version.
func (p *PgStore) DeleteByID(ctx context.Context, id int32, version int32) error {
	count, err := p.q.Delete(ctx, db.DeleteParams{
		ID:      id,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete product by ID: %w", perrors.ErrPersistence, err)
	}
	if count == 0 {
		return p.missingOrStale(ctx, id)
	}
	return nil
}

// missingOrStale tells apart the two reasons a version-guarded statement touched no row.
func (p *PgStore) missingOrStale(ctx context.Context, id int32) error {
	found, err := p.q.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: failed to check product existence: %w", perrors.ErrPersistence, err)
	}
	if !found {
		return perrors.ErrProductNotFound
	}
	return perrors.ErrConcurrencyConflict
}

// checkViolation maps the table check constraints and price overflow to domain errors, nil for anything else.
func checkViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	if pgErr.Code == pgNumericOutOfRange {
		return perrors.ErrInvalidPrice
	}
	if pgErr.Code != pgCheckViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case stockCheckConstraint:
		return perrors.ErrNegativeStock
	case priceCheckConstraint:
		return perrors.ErrNegativePrice
	default:
		return nil
	}
}
