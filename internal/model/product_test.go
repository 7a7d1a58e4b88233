package model

import (
	"testing"
	"time"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() Product {
	return Product{
		Name:     "Laptop Gaming",
		Price:    decimal.RequireFromString("2999.99"),
		Category: "Electronics",
		Stock:    15,
	}
}

func Test_Product_ValidateForCreate(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(p *Product)
		wantField string
	}{
		{name: "Success - valid product", mutate: func(_ *Product) {}},
		{name: "Success - zero stock", mutate: func(p *Product) { p.Stock = 0 }},
		{name: "Success - one cent", mutate: func(p *Product) { p.Price = decimal.RequireFromString("0.01") }},
		{name: "Success - trailing zeros", mutate: func(p *Product) { p.Price = decimal.RequireFromString("10.500") }},
		{name: "Success - eight integer digits", mutate: func(p *Product) { p.Price = decimal.RequireFromString("99999999.99") }},
		{name: "Error - zero price", mutate: func(p *Product) { p.Price = decimal.Zero }, wantField: "price"},
		{name: "Error - negative price", mutate: func(p *Product) { p.Price = decimal.RequireFromString("-1") }, wantField: "price"},
		{name: "Error - three decimal places", mutate: func(p *Product) { p.Price = decimal.RequireFromString("1.999") }, wantField: "price"},
		{name: "Error - nine integer digits", mutate: func(p *Product) { p.Price = decimal.RequireFromString("100000000") }, wantField: "price"},
		{name: "Error - negative stock", mutate: func(p *Product) { p.Stock = -1 }, wantField: "stock"},
		{name: "Error - blank name", mutate: func(p *Product) { p.Name = "  " }, wantField: "name"},
		{name: "Error - empty category", mutate: func(p *Product) { p.Category = "" }, wantField: "category"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			p := validProduct()
			tc.mutate(&p)
			// when
			err := p.ValidateForCreate()
			// then
			if tc.wantField == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, perrors.ErrValidation)
			var vErr *perrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.wantField, vErr.Field)
		})
	}
}

func Test_Product_ReplaceFields(t *testing.T) {
	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	p := Product{ID: 7, Name: "Old", Active: true, CreatedAt: created, UpdatedAt: created}

	p.ReplaceFields(Product{
		ID:          99,
		Name:        "New",
		Description: "desc",
		Price:       decimal.RequireFromString("5.50"),
		Category:    "Books",
		Stock:       3,
		Active:      false,
	})

	assert.Equal(t, int64(7), p.ID, "ID must not be replaced")
	assert.True(t, p.Active, "Active must not be replaced")
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, "New", p.Name)
	assert.Equal(t, "desc", p.Description)
	assert.True(t, decimal.RequireFromString("5.5").Equal(p.Price))
	assert.Equal(t, "Books", p.Category)
	assert.Equal(t, int32(3), p.Stock)
}

func Test_Product_Touch(t *testing.T) {
	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	p := Product{CreatedAt: created, UpdatedAt: created}

	p.Touch(created.Add(time.Hour))
	assert.Equal(t, created.Add(time.Hour), p.UpdatedAt)

	// a clock running behind never moves updatedAt before createdAt
	p.Touch(created.Add(-time.Hour))
	assert.Equal(t, created, p.UpdatedAt)
}

func Test_Filter_Matches(t *testing.T) {
	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	stock := func(v int32) *int32 { return &v }
	p := Product{Name: "Laptop Gaming", Category: "Electronics", Price: decimal.RequireFromString("100.00"), Stock: 5, Active: true}
	inactive := p
	inactive.Active = false

	testCases := []struct {
		name    string
		filter  Filter
		product Product
		want    bool
	}{
		{name: "empty filter matches inactive", filter: Filter{}, product: inactive, want: true},
		{name: "active only rejects inactive", filter: Filter{ActiveOnly: true}, product: inactive, want: false},
		{name: "exact name", filter: Filter{Name: "Laptop Gaming"}, product: p, want: true},
		{name: "exact name is case-sensitive", filter: Filter{Name: "laptop gaming"}, product: p, want: false},
		{name: "category", filter: Filter{Category: "Electronics"}, product: p, want: true},
		{name: "other category", filter: Filter{Category: "Books"}, product: p, want: false},
		{name: "name fragment ignores case", filter: Filter{NameContains: "GAM"}, product: p, want: true},
		{name: "name fragment missing", filter: Filter{NameContains: "phone"}, product: p, want: false},
		{name: "price range inclusive low", filter: Filter{MinPrice: price("100"), MaxPrice: price("200")}, product: p, want: true},
		{name: "price range inclusive high", filter: Filter{MinPrice: price("50"), MaxPrice: price("100")}, product: p, want: true},
		{name: "price above range", filter: Filter{MaxPrice: price("99.99")}, product: p, want: false},
		{name: "price below range", filter: Filter{MinPrice: price("100.01")}, product: p, want: false},
		{name: "stock below threshold", filter: Filter{StockBelow: stock(6)}, product: p, want: true},
		{name: "stock equal to threshold", filter: Filter{StockBelow: stock(5)}, product: p, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Matches(tc.product))
		})
	}
}
