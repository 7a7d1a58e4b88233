// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/abgdnv/gocatalog/internal/model"
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
// Implementations enforce name uniqueness among active products and return ErrNameConflict on violation.
type ProductStore interface {
	// Insert persists a new product and returns it with its assigned ID.
	// Returns ErrNameConflict if an active product with the same name exists.
	Insert(ctx context.Context, product model.Product) (*model.Product, error)

	// FindByID retrieves a single product by its unique identifier, active or not.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*model.Product, error)

	// FindAll returns every product ordered by ID, including inactive ones.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]model.Product, error)

	// FindPage returns the requested page of products matching the filter and the total number of matches.
	// Records are ordered by the requested field, then by ID ascending.
	FindPage(ctx context.Context, filter model.Filter, page model.PageRequest) ([]model.Product, int64, error)

	// FindBy returns the products matching the filter ordered by ID.
	// Returns an empty slice if nothing matches.
	FindBy(ctx context.Context, filter model.Filter) ([]model.Product, error)

	// Update atomically loads the product, applies modify and overwrites the stored record.
	// The ID of the product cannot be changed by modify; an error from modify aborts the update.
	// Returns ErrProductNotFound if no product exists with the given ID
	// and ErrNameConflict if the result collides with another active product.
	Update(ctx context.Context, id int64, modify func(product *model.Product) error) (*model.Product, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
