// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/model"
	"github.com/abgdnv/gocatalog/internal/store"
	"github.com/shopspring/decimal"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// CreateProduct validates and persists a new active product.
	// Returns a ValidationError for invalid input and ErrNameConflict if an active product has the same name.
	CreateProduct(ctx context.Context, candidate model.Product) (*model.Product, error)

	// GetProductByID retrieves a single product, active or not.
	// found is false when no product exists with the given ID; that is not an error.
	GetProductByID(ctx context.Context, id int64) (product *model.Product, found bool, err error)

	// GetAllProducts returns every product ordered by ID, including inactive ones.
	GetAllProducts(ctx context.Context) ([]model.Product, error)

	// GetProductsPage returns one page of active products.
	// Returns a ValidationError for a negative page, a size below 1 or an unknown sort field.
	GetProductsPage(ctx context.Context, req model.PageRequest) (model.Page[model.Product], error)

	// UpdateProduct replaces name, description, price, category and stock of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	UpdateProduct(ctx context.Context, id int64, values model.Product) (*model.Product, error)

	// DeleteProduct marks a product inactive. Deleting an inactive product succeeds without changes.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteProduct(ctx context.Context, id int64) error

	// GetProductsByCategory returns active products with exactly this category.
	GetProductsByCategory(ctx context.Context, category string) ([]model.Product, error)

	// GetProductsByPriceRange returns active products priced between minPrice and maxPrice inclusive.
	GetProductsByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal) ([]model.Product, error)

	// SearchProductsByName returns active products whose name contains fragment, ignoring case.
	SearchProductsByName(ctx context.Context, fragment string) ([]model.Product, error)

	// GetProductsWithLowStock returns active products with stock strictly below threshold.
	GetProductsWithLowStock(ctx context.Context, threshold int32) ([]model.Product, error)

	// UpdateStock overwrites the stock of an existing product.
	// Returns a ValidationError for negative stock and ErrProductNotFound if the product does not exist.
	UpdateStock(ctx context.Context, id int64, stock int32) (*model.Product, error)
}

// errUnchanged aborts a store update that would not modify the record.
var errUnchanged = errors.New("product unchanged")

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	observer   Observer
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithObserver sets the collaborator notified after each successful mutation.
func WithObserver(observer Observer) Option {
	return func(s *Service) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore, opts ...Option) *Service {
	s := &Service{
		repository: repo,
		observer:   noopObserver{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateProduct(ctx context.Context, candidate model.Product) (*model.Product, error) {
	if err := candidate.ValidateForCreate(); err != nil {
		return nil, err
	}
	if err := s.ensureNameAvailable(ctx, candidate.Name, 0); err != nil {
		return nil, err
	}

	now := s.timestamp()
	candidate.ID = 0
	candidate.Active = true
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	created, err := s.repository.Insert(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to create product %q: %w", candidate.Name, err)
	}

	s.notify(ctx, EventCreated, created)
	return created, nil
}

func (s *Service) GetProductByID(ctx context.Context, id int64) (*model.Product, bool, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return product, true, nil
}

func (s *Service) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *Service) GetProductsPage(ctx context.Context, req model.PageRequest) (model.Page[model.Product], error) {
	if err := req.Validate(); err != nil {
		return model.Page[model.Product]{}, err
	}

	products, total, err := s.repository.FindPage(ctx, model.Filter{ActiveOnly: true}, req)
	if err != nil {
		return model.Page[model.Product]{}, fmt.Errorf("failed to fetch products page %d: %w", req.Page, err)
	}
	return model.NewPage(products, req, total), nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, values model.Product) (*model.Product, error) {
	if err := values.ValidateForCreate(); err != nil {
		return nil, err
	}

	existing, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	if existing.Active && existing.Name != values.Name {
		if err := s.ensureNameAvailable(ctx, values.Name, id); err != nil {
			return nil, err
		}
	}

	now := s.timestamp()
	updated, err := s.repository.Update(ctx, id, func(p *model.Product) error {
		p.ReplaceFields(values)
		p.Touch(now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}

	s.notify(ctx, EventUpdated, updated)
	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	now := s.timestamp()
	deleted, err := s.repository.Update(ctx, id, func(p *model.Product) error {
		if !p.Active {
			return errUnchanged
		}
		p.Active = false
		p.Touch(now)
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}

	s.notify(ctx, EventDeleted, deleted)
	return nil
}

func (s *Service) GetProductsByCategory(ctx context.Context, category string) ([]model.Product, error) {
	if strings.TrimSpace(category) == "" {
		return []model.Product{}, nil
	}
	return s.find(ctx, model.Filter{ActiveOnly: true, Category: category})
}

func (s *Service) GetProductsByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal) ([]model.Product, error) {
	if minPrice.IsNegative() {
		return nil, perrors.NewValidationError("minPrice", "must not be negative, got %s", minPrice)
	}
	if maxPrice.IsNegative() {
		return nil, perrors.NewValidationError("maxPrice", "must not be negative, got %s", maxPrice)
	}
	if minPrice.GreaterThan(maxPrice) {
		return nil, perrors.NewValidationError("minPrice", "must not be greater than maxPrice (%s > %s)", minPrice, maxPrice)
	}
	return s.find(ctx, model.Filter{ActiveOnly: true, MinPrice: &minPrice, MaxPrice: &maxPrice})
}

func (s *Service) SearchProductsByName(ctx context.Context, fragment string) ([]model.Product, error) {
	return s.find(ctx, model.Filter{ActiveOnly: true, NameContains: fragment})
}

func (s *Service) GetProductsWithLowStock(ctx context.Context, threshold int32) ([]model.Product, error) {
	if threshold < 0 {
		return nil, perrors.NewValidationError("threshold", "must not be negative, got %d", threshold)
	}
	return s.find(ctx, model.Filter{ActiveOnly: true, StockBelow: &threshold})
}

func (s *Service) UpdateStock(ctx context.Context, id int64, stock int32) (*model.Product, error) {
	if stock < 0 {
		return nil, perrors.NewValidationError("stock", "must not be negative, got %d", stock)
	}

	now := s.timestamp()
	updated, err := s.repository.Update(ctx, id, func(p *model.Product) error {
		p.Stock = stock
		p.Touch(now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update stock for product with ID %d: %w", id, err)
	}

	s.notify(ctx, EventStockUpdated, updated)
	return updated, nil
}

func (s *Service) find(ctx context.Context, filter model.Filter) ([]model.Product, error) {
	products, err := s.repository.FindBy(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// ensureNameAvailable fails fast when another active product already uses name.
// The store constraint stays authoritative under concurrent writers.
func (s *Service) ensureNameAvailable(ctx context.Context, name string, exceptID int64) error {
	holders, err := s.repository.FindBy(ctx, model.Filter{ActiveOnly: true, Name: name})
	if err != nil {
		return fmt.Errorf("failed to check product name %q: %w", name, err)
	}
	for _, p := range holders {
		if p.ID != exceptID {
			return perrors.ErrNameConflict
		}
	}
	return nil
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Service) notify(ctx context.Context, eventType EventType, product *model.Product) {
	s.observer.Observe(ctx, Event{
		Type:       eventType,
		Product:    *product,
		OccurredAt: product.UpdatedAt,
	})
}
