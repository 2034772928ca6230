package store

import (
	"context"
	"slices"
	"sync"
	"time"

	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/store/db"
	"github.com/shopspring/decimal"
)

// FirstProductID is the first identity value handed out, matching the products table seed.
const FirstProductID int32 = 100000

// MemoryStore implements ProductStore using an in-memory map.
// It enforces the same version and check-constraint rules as the products table.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int32]db.Product
	nextID   int32
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory ProductStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int32]db.Product),
		nextID:   FirstProductID,
		now:      time.Now,
	}
}

// FindByID retrieves a product by its ID.
func (s *MemoryStore) FindByID(_ context.Context, id int32) (*db.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	return &p, nil
}

// FindAll retrieves all products ordered by ID.
func (s *MemoryStore) FindAll(_ context.Context) ([]db.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sorted(), nil
}

// FindPage retrieves one page of products ordered by ID.
func (s *MemoryStore) FindPage(_ context.Context, offset, limit int32) ([]db.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.sorted()
	if offset < 0 || limit <= 0 || int(offset) >= len(list) {
		return []db.Product{}, nil
	}
	end := min(int(offset)+int(limit), len(list))
	return list[offset:end], nil
}

// Create creates a new product and returns it.
func (s *MemoryStore) Create(_ context.Context, params db.CreateParams) (*db.Product, error) {
	if err := checkConstraints(params.Stock, params.Price); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	product := db.Product{
		ID:          s.nextID,
		Name:        params.Name,
		Description: params.Description,
		Category:    params.Category,
		Price:       params.Price,
		Stock:       params.Stock,
		Version:     1,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}
	s.nextID++
	s.products[product.ID] = product

	return &product, nil
}

// Update overwrites a product if the supplied version is current.
func (s *MemoryStore) Update(_ context.Context, params db.UpdateParams) (*db.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.products[params.ID]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	if current.Version != params.Version {
		return nil, perrors.ErrConcurrencyConflict
	}
	if err := checkConstraints(params.Stock, params.Price); err != nil {
		return nil, err
	}

	now := s.now()
	current.Name = params.Name
	current.Description = params.Description
	current.Category = params.Category
	current.Price = params.Price
	current.Stock = params.Stock
	current.Version++
	current.UpdatedAt = &now
	s.products[current.ID] = current

	return &current, nil
}

// DeleteByID deletes a product if the supplied version is current.
func (s *MemoryStore) DeleteByID(_ context.Context, id int32, version int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.products[id]
	if !exists {
		return perrors.ErrProductNotFound
	}
	if current.Version != version {
		return perrors.ErrConcurrencyConflict
	}
	delete(s.products, id)
	return nil
}

// sorted returns a copy of all products ordered by ID. Caller must hold the lock.
func (s *MemoryStore) sorted() []db.Product {
	list := make([]db.Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b db.Product) int {
		return int(a.ID) - int(b.ID)
	})
	return list
}

func checkConstraints(stock int32, price decimal.NullDecimal) error {
	if stock < 0 {
		return perrors.ErrNegativeStock
	}
	if price.Valid {
		return CheckPrice(price.Decimal)
	}
	return nil
}
