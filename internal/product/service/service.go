// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/store"
	"github.com/abgdnv/catalog/internal/product/store/db"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/messaging/events"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int32) (*ProductDto, error)

	// FindAll returns all products ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindPage returns the 1-based page of products ordered by ID.
	// Returns an empty slice for pages past the end and ErrInvalidPage for non-positive arguments.
	FindPage(ctx context.Context, pageNumber, pageSize int32) ([]ProductDto, error)

	// Create adds a new product to the system.
	// Returns error if the product cannot be created.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update overwrites an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID
	// and ErrConcurrencyConflict if it was changed in between.
	Update(ctx context.Context, product ProductDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID
	// and ErrConcurrencyConflict if it was changed in between.
	DeleteByID(ctx context.Context, id int32) error

	// IncreaseStock adds quantity to the product's stock.
	// Returns ErrProductNotFound if no product exists with the given ID.
	IncreaseStock(ctx context.Context, id int32, quantity int32) (*ProductDto, error)

	// DecreaseStock removes quantity from the product's stock.
	// Returns ErrProductNotFound if no product exists with the given ID
	// and ErrInsufficientStock if the stock is smaller than quantity.
	DecreaseStock(ctx context.Context, id int32, quantity int32) (*ProductDto, error)
}

// publishTimeout bounds the publish of one event after its write committed.
const publishTimeout = 5 * time.Second

// Service implements ProductService and provides methods to manage products.
// It holds no state of its own; ordering between concurrent writers is left to the store's version check.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	logger     *slog.Logger
}

// NewService creates a new instance of ProductService with the provided repository.
// Events of successful writes go to publisher.
func NewService(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repository: repo,
		publisher:  publisher,
		logger:     logger.With("component", "service"),
	}
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id int32) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}

	return toDto(product), nil
}

// FindAll retrieves all products and returns them as ProductDTOs.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	return toDtos(products), nil
}

// FindPage retrieves one page of products and returns them as ProductDTOs.
func (s *Service) FindPage(ctx context.Context, pageNumber, pageSize int32) ([]ProductDto, error) {
	if pageNumber < 1 || pageSize < 1 {
		return nil, perrors.ErrInvalidPage
	}
	offset := int64(pageNumber-1) * int64(pageSize)
	if offset > math.MaxInt32 {
		return []ProductDto{}, nil
	}

	products, err := s.repository.FindPage(ctx, int32(offset), pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d of products: %w", pageNumber, err)
	}

	return toDtos(products), nil
}

// Create creates a new product and returns it as a ProductDto.
// Returns an error if the product cannot be created.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	if err := checkInvariants(product.Stock, product.Price); err != nil {
		return nil, err
	}

	created, err := s.repository.Create(ctx, toCreateParams(product))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(ctx, events.ProductCreated(created.ID, created.Version, created.Stock))
	return toDto(created), nil
}

// Update overwrites an existing product's details and returns the updated product as a ProductDto.
// The write is guarded by product.Version when the caller supplies one, otherwise by the version just read.
func (s *Service) Update(ctx context.Context, product ProductDto) (*ProductDto, error) {
	existing, err := s.repository.FindByID(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product with ID %d for update: %w", product.ID, err)
	}
	if err := checkInvariants(product.Stock, product.Price); err != nil {
		return nil, err
	}

	version := existing.Version
	if product.Version != 0 {
		version = product.Version
	}

	updated, err := s.repository.Update(ctx, toUpdateParams(existing.ID, product, version))
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", product.ID, err)
	}

	s.publish(ctx, events.ProductUpdated(updated.ID, updated.Version, updated.Stock))
	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID.
func (s *Service) DeleteByID(ctx context.Context, id int32) error {
	existing, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch product with ID %d for deletion: %w", id, err)
	}

	if err := s.repository.DeleteByID(ctx, existing.ID, existing.Version); err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}

	s.publish(ctx, events.ProductDeleted(existing.ID, existing.Version))
	return nil
}

// IncreaseStock adds quantity to the stock of a product and returns the updated product.
func (s *Service) IncreaseStock(ctx context.Context, id int32, quantity int32) (*ProductDto, error) {
	existing, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product with ID %d for stock increase: %w", id, err)
	}
	if quantity < 0 {
		return nil, perrors.ErrInvalidQuantity
	}

	stock := existing.Stock + quantity
	if stock < 0 {
		// int32 wrapped around
		return nil, perrors.ErrNegativeStock
	}

	return s.writeStock(ctx, existing, stock)
}

// DecreaseStock removes quantity from the stock of a product and returns the updated product.
// Fails with ErrInsufficientStock, leaving the product untouched, if stock would drop below zero.
func (s *Service) DecreaseStock(ctx context.Context, id int32, quantity int32) (*ProductDto, error) {
	existing, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product with ID %d for stock decrease: %w", id, err)
	}
	if quantity < 0 {
		return nil, perrors.ErrInvalidQuantity
	}
	if existing.Stock < quantity {
		return nil, fmt.Errorf("product with ID %d has %d in stock, %d requested: %w",
			id, existing.Stock, quantity, perrors.ErrInsufficientStock)
	}

	return s.writeStock(ctx, existing, existing.Stock-quantity)
}

// writeStock persists a new stock value for a product read in the same call.
func (s *Service) writeStock(ctx context.Context, existing *db.Product, stock int32) (*ProductDto, error) {
	updated, err := s.repository.Update(ctx, withStock(existing, stock))
	if err != nil {
		return nil, fmt.Errorf("failed to update stock for product with ID %d: %w", existing.ID, err)
	}

	s.publish(ctx, events.StockChanged(updated.ID, updated.Version, updated.Stock))
	return toDto(updated), nil
}

// publish sends an event for a write that already succeeded. Failures are logged only.
// The write is committed, so a caller going away must not cancel the event.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish product event", "subject", event.Subject(), "error", err)
	}
}
