// Package model contains the product record and the value types used to query it.
package model

import (
	"strings"
	"time"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/shopspring/decimal"
)

const (
	MaxPriceIntegerDigits  = 8
	MaxPriceFractionDigits = 2
)

// maxPriceExclusive is the smallest price with more than MaxPriceIntegerDigits integer digits.
var maxPriceExclusive = decimal.New(1, MaxPriceIntegerDigits)

// Product is the catalog entity.
// ID and timestamps are owned by the storage and service; Active=false marks a soft-deleted record.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int32           `json:"stock"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ValidateForCreate re-asserts the domain invariants of a candidate record before it is persisted.
// Field shape (length, allowed characters) is checked by the transport layer.
func (p *Product) ValidateForCreate() error {
	if strings.TrimSpace(p.Name) == "" {
		return perrors.NewValidationError("name", "must not be empty")
	}
	if strings.TrimSpace(p.Category) == "" {
		return perrors.NewValidationError("category", "must not be empty")
	}
	if err := ValidatePrice(p.Price); err != nil {
		return err
	}
	if p.Stock < 0 {
		return perrors.NewValidationError("stock", "must not be negative, got %d", p.Stock)
	}
	return nil
}

// ReplaceFields overwrites the caller-settable fields with the ones from values.
// ID, Active and timestamps are left untouched.
func (p *Product) ReplaceFields(values Product) {
	p.Name = values.Name
	p.Description = values.Description
	p.Price = values.Price
	p.Category = values.Category
	p.Stock = values.Stock
}

// Touch refreshes UpdatedAt, never moving it before CreatedAt.
func (p *Product) Touch(now time.Time) {
	if now.Before(p.CreatedAt) {
		now = p.CreatedAt
	}
	p.UpdatedAt = now
}

// ValidatePrice checks that price is positive, has at most two fractional digits
// and at most eight integer digits.
func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return perrors.NewValidationError("price", "must be greater than 0, got %s", price.String())
	}
	if !price.Equal(price.Round(MaxPriceFractionDigits)) {
		return perrors.NewValidationError("price", "must have at most %d decimal places, got %s", MaxPriceFractionDigits, price.String())
	}
	if price.GreaterThanOrEqual(maxPriceExclusive) {
		return perrors.NewValidationError("price", "must have at most %d integer digits, got %s", MaxPriceIntegerDigits, price.String())
	}
	return nil
}
