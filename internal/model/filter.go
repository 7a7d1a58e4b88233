package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Filter is the predicate used by list-style queries.
// Zero values mean "no constraint"; every set field must match.
type Filter struct {
	ActiveOnly bool
	// Name matches exactly (case-sensitive).
	Name string
	// Category matches exactly.
	Category string
	// NameContains matches a case-insensitive substring of the name.
	NameContains string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	// StockBelow matches records with Stock strictly lower than the value.
	StockBelow *int32
}

// Matches reports whether p satisfies every constraint of the filter.
func (f Filter) Matches(p Product) bool {
	if f.ActiveOnly && !p.Active {
		return false
	}
	if f.Name != "" && p.Name != f.Name {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.StockBelow != nil && p.Stock >= *f.StockBelow {
		return false
	}
	return true
}
