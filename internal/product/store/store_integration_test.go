package store

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/migrations"
	"github.com/abgdnv/catalog/internal/product/store/db"
	"github.com/abgdnv/catalog/pkg/bootstrap"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "PRODUCT_SKIP_INTEGRATION_TESTS"

// ProductStoreSuite runs PgStore against a real PostgreSQL.
type ProductStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       ProductStore
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite starts a PostgreSQL container and applies the embedded migrations.
func (s *ProductStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// 1. Start a PostgreSQL container with the specified configuration. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("products"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. Database migration
	require.NoError(s.T(), bootstrap.Migrate(connStr, migrations.FS, s.logger), "Failed to apply migrations")

	// 4. Connection pool
	s.dbPool, err = bootstrap.NewDbPool(s.ctx, connStr, 30*time.Second)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	s.store = NewPgStore(s.dbPool)
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *ProductStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest empties the products table and restarts its identity at 100000.
func (s *ProductStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

// TestProductStoreIntegration runs the ProductStore integration tests.
func TestProductStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(ProductStoreSuite))
}

func strPtr(s string) *string { return &s }

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// createTestProduct is a helper function to create a product for testing purposes.
func (s *ProductStoreSuite) createTestProduct(name string, unitPrice string, stock int32) *db.Product {
	s.T().Helper()
	product, err := s.store.Create(s.ctx, db.CreateParams{
		Name:  strPtr(name),
		Price: price(unitPrice),
		Stock: stock,
	})
	require.NoError(s.T(), err, "createTestProduct helper failed to create product")
	return product
}

func (s *ProductStoreSuite) TestCreateAndFindByID() {
	// 1. Create a new product
	created, err := s.store.Create(s.ctx, db.CreateParams{
		Name:        strPtr("Apple Iphone 15 Pro"),
		Description: strPtr("Titanium, 256 GB"),
		Category:    strPtr("Phones"),
		Price:       price("599.90"),
		Stock:       100,
	})
	require.NoError(s.T(), err)

	// 2. Identity starts at the seed and version at one
	require.Equal(s.T(), FirstProductID, created.ID)
	require.EqualValues(s.T(), 1, created.Version)
	require.NotNil(s.T(), created.CreatedAt)

	// 3. Fetch the product by ID
	fetched, err := s.store.FindByID(s.ctx, created.ID)

	// 4. Check that the fetched product matches the created product
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, fetched.ID)
	assert.Equal(s.T(), "Apple Iphone 15 Pro", *fetched.Name)
	assert.Equal(s.T(), "Titanium, 256 GB", *fetched.Description)
	assert.Equal(s.T(), "Phones", *fetched.Category)
	assert.True(s.T(), fetched.Price.Valid)
	assert.True(s.T(), decimal.RequireFromString("599.9").Equal(fetched.Price.Decimal))
	assert.EqualValues(s.T(), 100, fetched.Stock)
	assert.WithinDuration(s.T(), *created.CreatedAt, *fetched.CreatedAt, time.Second)
}

func (s *ProductStoreSuite) TestCreate_NullableFields() {
	created, err := s.store.Create(s.ctx, db.CreateParams{Stock: 0})
	require.NoError(s.T(), err)

	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), fetched.Name)
	assert.Nil(s.T(), fetched.Description)
	assert.Nil(s.T(), fetched.Category)
	assert.False(s.T(), fetched.Price.Valid)
}

func (s *ProductStoreSuite) TestCreate_CheckConstraints() {
	_, err := s.store.Create(s.ctx, db.CreateParams{Stock: -1})
	require.ErrorIs(s.T(), err, perrors.ErrNegativeStock)

	_, err = s.store.Create(s.ctx, db.CreateParams{Price: price("-0.01"), Stock: 1})
	require.ErrorIs(s.T(), err, perrors.ErrNegativePrice)

	_, err = s.store.Create(s.ctx, db.CreateParams{Price: price("100000000000000000"), Stock: 1})
	require.ErrorIs(s.T(), err, perrors.ErrInvalidPrice)
	assert.NotErrorIs(s.T(), err, perrors.ErrPersistence)
}

func (s *ProductStoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, FirstProductID+42)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestFindAll_OrderedByID() {
	s.createTestProduct("Product A", "1.00", 10)
	s.createTestProduct("Product B", "2.00", 20)

	products, err := s.store.FindAll(s.ctx)

	require.NoError(s.T(), err)
	require.Len(s.T(), products, 2)
	assert.Equal(s.T(), "Product A", *products[0].Name)
	assert.Equal(s.T(), "Product B", *products[1].Name)
	assert.Less(s.T(), products[0].ID, products[1].ID)
	assert.True(s.T(), decimal.RequireFromString("2.00").Equal(products[1].Price.Decimal))
	assert.EqualValues(s.T(), 1, products[1].Version)
	assert.NotNil(s.T(), products[1].CreatedAt)
	assert.NotNil(s.T(), products[1].UpdatedAt)
}

func (s *ProductStoreSuite) TestFindAll_Empty() {
	products, err := s.store.FindAll(s.ctx)

	require.NoError(s.T(), err)
	assert.NotNil(s.T(), products)
	assert.Empty(s.T(), products)
}

func (s *ProductStoreSuite) TestFindPage() {
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		s.createTestProduct(name, "1.00", 1)
	}

	second, err := s.store.FindPage(s.ctx, 2, 2)
	require.NoError(s.T(), err)
	require.Len(s.T(), second, 2)
	assert.Equal(s.T(), "C", *second[0].Name)
	assert.Equal(s.T(), "D", *second[1].Name)

	last, err := s.store.FindPage(s.ctx, 4, 2)
	require.NoError(s.T(), err)
	require.Len(s.T(), last, 1)
	assert.Equal(s.T(), "E", *last[0].Name)

	past, err := s.store.FindPage(s.ctx, 10, 2)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), past)
}

func (s *ProductStoreSuite) TestUpdate() {
	created := s.createTestProduct("Samsung Galaxy S23", "699.00", 50)

	updated, err := s.store.Update(s.ctx, db.UpdateParams{
		ID:      created.ID,
		Name:    strPtr("Samsung Galaxy S23 Ultra"),
		Price:   price("799.00"),
		Stock:   30,
		Version: created.Version,
	})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), created.ID, updated.ID)
	assert.Equal(s.T(), "Samsung Galaxy S23 Ultra", *updated.Name)
	assert.True(s.T(), decimal.NewFromInt(799).Equal(updated.Price.Decimal))
	assert.EqualValues(s.T(), 30, updated.Stock)
	assert.Equal(s.T(), created.Version+1, updated.Version)
	assert.False(s.T(), updated.UpdatedAt.Before(*created.UpdatedAt))
}

func (s *ProductStoreSuite) TestUpdate_NotFound() {
	_, err := s.store.Update(s.ctx, db.UpdateParams{ID: FirstProductID + 7, Stock: 1, Version: 1})
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestUpdate_StaleVersion() {
	created := s.createTestProduct("Sony Xperia 1 V", "899.00", 15)

	_, err := s.store.Update(s.ctx, db.UpdateParams{ID: created.ID, Stock: 10, Version: created.Version + 1})
	require.ErrorIs(s.T(), err, perrors.ErrConcurrencyConflict)

	// the row is untouched
	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 15, fetched.Stock)
	assert.Equal(s.T(), created.Version, fetched.Version)
}

func (s *ProductStoreSuite) TestUpdate_SecondWriterWithSameVersionConflicts() {
	created := s.createTestProduct("Google Pixel 8", "599.00", 20)

	_, err := s.store.Update(s.ctx, db.UpdateParams{ID: created.ID, Stock: 15, Version: created.Version})
	require.NoError(s.T(), err)

	_, err = s.store.Update(s.ctx, db.UpdateParams{ID: created.ID, Stock: 5, Version: created.Version})
	require.ErrorIs(s.T(), err, perrors.ErrConcurrencyConflict)
}

func (s *ProductStoreSuite) TestUpdate_NegativeStock() {
	created := s.createTestProduct("Xiaomi 13 Pro", "749.00", 30)

	_, err := s.store.Update(s.ctx, db.UpdateParams{ID: created.ID, Stock: -1, Version: created.Version})
	require.ErrorIs(s.T(), err, perrors.ErrNegativeStock)
}

func (s *ProductStoreSuite) TestDeleteByID() {
	created := s.createTestProduct("OnePlus 11", "549.00", 25)

	err := s.store.DeleteByID(s.ctx, created.ID, created.Version)
	require.NoError(s.T(), err)

	_, err = s.store.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestDeleteByID_NotFound() {
	err := s.store.DeleteByID(s.ctx, FirstProductID+3, 1)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestDeleteByID_StaleVersion() {
	created := s.createTestProduct("Oppo Find N2", "799.00", 10)

	err := s.store.DeleteByID(s.ctx, created.ID, created.Version+1)
	require.ErrorIs(s.T(), err, perrors.ErrConcurrencyConflict)

	_, err = s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err, "product must survive a stale delete")
}
