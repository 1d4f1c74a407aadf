package store

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var _ ProductStore = (*CatalogStore)(nil)

// CatalogStore implements ProductStore with an ordered in-memory collection
// mirrored to a Snapshot after every mutation.
type CatalogStore struct {
	mu       sync.RWMutex
	products []Product
	nextID   int
	snapshot Snapshot
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCatalogStore creates an empty store backed by snapshot. Call Load to read persisted products.
func NewCatalogStore(snapshot Snapshot, logger *slog.Logger) *CatalogStore {
	return &CatalogStore{
		products: []Product{},
		nextID:   1,
		snapshot: snapshot,
		validate: newValidator(),
		logger:   logger.With("component", "store"),
	}
}

// newValidator returns a validator that treats a zero decimal price as missing.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Add validates the product, assigns the next identifier, appends it and persists the collection.
func (s *CatalogStore) Add(ctx context.Context, product Product) (*Product, error) {
	if err := s.validate.Struct(product); err != nil {
		s.logger.WarnContext(ctx, "Product rejected, all fields are required", "code", product.Code, "error", err)
		return nil, fmt.Errorf("%w: %w", perrors.ErrInvalidProduct, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.products, func(p Product) bool { return p.Code == product.Code }) {
		s.logger.WarnContext(ctx, "Product rejected, code already exists", "code", product.Code)
		return nil, fmt.Errorf("%w: %s", perrors.ErrDuplicateCode, product.Code)
	}

	product.ID = s.nextID
	s.products = append(s.products, product)
	s.nextID++
	if err := s.persist(ctx); err != nil {
		s.products = s.products[:len(s.products)-1]
		s.nextID--
		return nil, err
	}
	s.logger.DebugContext(ctx, "Product added", "ID", product.ID, "code", product.Code)
	return &product, nil
}

// List returns a copy of the collection in insertion order.
func (s *CatalogStore) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, len(s.products))
	copy(list, s.products)
	return list, nil
}

// FindByID retrieves a copy of the product with the given ID.
func (s *CatalogStore) FindByID(ctx context.Context, id int) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.DebugContext(ctx, "Product not found", "ID", id)
		return nil, perrors.ErrProductNotFound
	}
	found := s.products[idx]
	return &found, nil
}

// Update merges patch into the product with the given ID and persists the collection.
// Required fields and code uniqueness are not checked again.
func (s *CatalogStore) Update(ctx context.Context, id int, patch ProductPatch) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.DebugContext(ctx, "Product not found for update", "ID", id)
		return nil, perrors.ErrProductNotFound
	}
	previous := s.products[idx]
	updated := patch.apply(previous)
	s.products[idx] = updated
	if err := s.persist(ctx); err != nil {
		s.products[idx] = previous
		return nil, err
	}
	return &updated, nil
}

// DeleteByID removes the product with the given ID and persists the collection.
func (s *CatalogStore) DeleteByID(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.DebugContext(ctx, "Product not found for deletion", "ID", id)
		return perrors.ErrProductNotFound
	}
	removed := s.products[idx]
	s.products = slices.Delete(s.products, idx, idx+1)
	if err := s.persist(ctx); err != nil {
		s.products = slices.Insert(s.products, idx, removed)
		return err
	}
	return nil
}

// Load replaces the collection with the snapshot contents and derives the next
// identifier from the highest stored ID.
func (s *CatalogStore) Load(ctx context.Context) error {
	products, err := s.snapshot.Read(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error loading products", "error", err)
		return err
	}
	if products == nil {
		products = []Product{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.nextID = nextID(products)
	s.logger.InfoContext(ctx, "Products loaded", "count", len(products), "next_id", s.nextID)
	return nil
}

// Save writes the current collection to the snapshot.
func (s *CatalogStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx)
}

// persist writes the collection; callers must hold the write lock.
func (s *CatalogStore) persist(ctx context.Context) error {
	if err := s.snapshot.Write(ctx, s.products); err != nil {
		s.logger.ErrorContext(ctx, "Error saving products", "error", err)
		return err
	}
	return nil
}

func (s *CatalogStore) indexOf(id int) int {
	return slices.IndexFunc(s.products, func(p Product) bool { return p.ID == id })
}

func nextID(products []Product) int {
	maxID := 0
	for _, p := range products {
		maxID = max(maxID, p.ID)
	}
	return maxID + 1
}
