package model

import (
	"cmp"
	"strings"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
)

// SortField names a Product attribute that listings can be ordered by.
type SortField string

const (
	SortByID          SortField = "id"
	SortByName        SortField = "name"
	SortByDescription SortField = "description"
	SortByPrice       SortField = "price"
	SortByCategory    SortField = "category"
	SortByStock       SortField = "stock"
	SortByActive      SortField = "active"
	SortByCreatedAt   SortField = "createdAt"
	SortByUpdatedAt   SortField = "updatedAt"
)

var sortFields = map[SortField]struct{}{
	SortByID: {}, SortByName: {}, SortByDescription: {}, SortByPrice: {}, SortByCategory: {},
	SortByStock: {}, SortByActive: {}, SortByCreatedAt: {}, SortByUpdatedAt: {},
}

// ParseSortField converts s into a SortField.
// Returns a ValidationError if s is not a Product attribute.
func ParseSortField(s string) (SortField, error) {
	f := SortField(s)
	if !f.Valid() {
		return "", perrors.NewValidationError("sort", "unknown sort field %q", s)
	}
	return f, nil
}

// Valid reports whether f is a known Product attribute.
func (f SortField) Valid() bool {
	_, ok := sortFields[f]
	return ok
}

// Compare orders a and b by the field, ascending.
func (f SortField) Compare(a, b Product) int {
	switch f {
	case SortByName:
		return strings.Compare(a.Name, b.Name)
	case SortByDescription:
		return strings.Compare(a.Description, b.Description)
	case SortByPrice:
		return a.Price.Cmp(b.Price)
	case SortByCategory:
		return strings.Compare(a.Category, b.Category)
	case SortByStock:
		return cmp.Compare(a.Stock, b.Stock)
	case SortByActive:
		return compareBool(a.Active, b.Active)
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Direction is the sort direction of a page request.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection returns Desc for "desc" (any case) and Asc for everything else.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// PageRequest selects a zero-based page of a sorted listing.
type PageRequest struct {
	Page      int
	Size      int
	Sort      SortField
	Direction Direction
}

// Validate checks the page index, size, sort field and direction.
func (r PageRequest) Validate() error {
	if r.Page < 0 {
		return perrors.NewValidationError("page", "must be greater than or equal to 0, got %d", r.Page)
	}
	if r.Size < 1 {
		return perrors.NewValidationError("size", "must be greater than or equal to 1, got %d", r.Size)
	}
	if !r.Sort.Valid() {
		return perrors.NewValidationError("sort", "unknown sort field %q", r.Sort)
	}
	if r.Direction != Asc && r.Direction != Desc {
		return perrors.NewValidationError("direction", "must be %q or %q, got %q", Asc, Desc, r.Direction)
	}
	return nil
}

// Offset is the number of records preceding the requested page.
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// Page is a slice of a sorted result set with its pagination metadata.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
	First         bool
	Last          bool
	HasNext       bool
	HasPrevious   bool
}

// NewPage builds the page metadata for content returned for req out of total records.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	hasNext := req.Page+1 < totalPages
	return Page[T]{
		Content:       content,
		Number:        req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         req.Page == 0,
		Last:          !hasNext,
		HasNext:       hasNext,
		HasPrevious:   req.Page > 0,
	}
}

// MapPage converts the content of p with fn, keeping the metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	content := make([]U, len(p.Content))
	for i, item := range p.Content {
		content[i] = fn(item)
	}
	return Page[U]{
		Content:       content,
		Number:        p.Number,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		First:         p.First,
		Last:          p.Last,
		HasNext:       p.HasNext,
		HasPrevious:   p.HasPrevious,
	}
}
