package store

import (
	"context"
	"slices"
	"sync"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/model"
)

// InMemoryStore implements ProductStore using an in-memory map.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[int64]model.Product
	nextID   int64
}

// NewInMemoryStore creates a new, empty instance of InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make(map[int64]model.Product),
		nextID:   1,
	}
}

// Insert stores a new product and assigns it the next ID.
func (s *InMemoryStore) Insert(_ context.Context, product model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Active && s.activeNameTaken(product.Name, 0) {
		return nil, perrors.ErrNameConflict
	}
	product.ID = s.nextID
	s.nextID++
	s.products[product.ID] = product

	return &product, nil
}

// FindByID retrieves a product by its ID.
func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	return &p, nil
}

// FindAll retrieves all products ordered by ID.
func (s *InMemoryStore) FindAll(ctx context.Context) ([]model.Product, error) {
	return s.FindBy(ctx, model.Filter{})
}

// FindPage retrieves one page of the products matching filter.
func (s *InMemoryStore) FindPage(_ context.Context, filter model.Filter, page model.PageRequest) ([]model.Product, int64, error) {
	s.mu.RLock()
	matched := s.collect(filter)
	s.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b model.Product) int {
		c := page.Sort.Compare(a, b)
		if page.Direction == model.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return model.SortByID.Compare(a, b)
	})

	total := int64(len(matched))
	start := min(page.Offset(), len(matched))
	end := min(start+page.Size, len(matched))
	return slices.Clone(matched[start:end]), total, nil
}

// FindBy retrieves the products matching filter ordered by ID.
func (s *InMemoryStore) FindBy(_ context.Context, filter model.Filter) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(filter), nil
}

// Update applies modify to the stored product under the write lock.
func (s *InMemoryStore) Update(_ context.Context, id int64, modify func(product *model.Product) error) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	updated := current
	if err := modify(&updated); err != nil {
		return nil, err
	}
	updated.ID = id
	if updated.Active && s.activeNameTaken(updated.Name, id) {
		return nil, perrors.ErrNameConflict
	}
	s.products[id] = updated

	return &updated, nil
}

// Ping always succeeds.
func (s *InMemoryStore) Ping(_ context.Context) error {
	return nil
}

// collect returns the products matching filter ordered by ID. Callers must hold the lock.
func (s *InMemoryStore) collect(filter model.Filter) []model.Product {
	list := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Matches(p) {
			list = append(list, p)
		}
	}
	slices.SortFunc(list, model.SortByID.Compare)
	return list
}

// activeNameTaken reports whether an active product other than exceptID uses name. Callers must hold the lock.
func (s *InMemoryStore) activeNameTaken(name string, exceptID int64) bool {
	for id, p := range s.products {
		if id != exceptID && p.Active && p.Name == name {
			return true
		}
	}
	return false
}
