package rest

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/gocatalog/internal/model"
	"github.com/shopspring/decimal"
)

// ProductRequest is the body of create and update requests.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Price       decimal.Decimal `json:"price" validate:"price"`
	Category    string          `json:"category" validate:"required,alphaspace"`
	Stock       *int32          `json:"stock" validate:"required,min=0"`
}

func (p ProductRequest) toModel() model.Product {
	var stock int32
	if p.Stock != nil {
		stock = *p.Stock
	}
	return model.Product{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Stock:       stock,
	}
}

type ProductResponse struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Category    string      `json:"category"`
	Stock       int32       `json:"stock"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func toResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       json.Number(p.Price.StringFixed(model.MaxPriceFractionDigits)),
		Category:    p.Category,
		Stock:       p.Stock,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toResponses(products []model.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toResponse(p))
	}
	return out
}

type PageMetadata struct {
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
	HasNext       bool  `json:"hasNext"`
	HasPrevious   bool  `json:"hasPrevious"`
}

type PageResponse struct {
	Content []ProductResponse `json:"content"`
	Page    PageMetadata      `json:"page"`
}

func toPageResponse(p model.Page[model.Product]) PageResponse {
	mapped := model.MapPage(p, toResponse)
	return PageResponse{
		Content: mapped.Content,
		Page: PageMetadata{
			Number:        mapped.Number,
			Size:          mapped.Size,
			TotalElements: mapped.TotalElements,
			TotalPages:    mapped.TotalPages,
			First:         mapped.First,
			Last:          mapped.Last,
			HasNext:       mapped.HasNext,
			HasPrevious:   mapped.HasPrevious,
		},
	}
}
