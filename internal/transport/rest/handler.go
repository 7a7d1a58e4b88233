// Package rest exposes the catalog over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/model"
	"github.com/abgdnv/gocatalog/internal/service"
	"github.com/abgdnv/gocatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	validationKey   = "validation_errors"
)

// Pinger reports whether the product storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	service  service.ProductService
	health   Pinger
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a Handler serving the product API on top of svc.
func NewHandler(svc service.ProductService, health Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		service:  svc,
		health:   health,
		validate: newValidator(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the product API and the health check.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Get("/category/{category}", h.FindByCategory)
		r.Get("/price-range", h.FindByPriceRange)
		r.Get("/search", h.SearchByName)
		r.Get("/low-stock", h.FindLowStock)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Patch("/stock", h.UpdateStock)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindAll returns a page of active products, or every product when unpaged=true.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	unpaged := false
	if raw := query.Get("unpaged"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid unpaged value: %s", raw))
			return
		}
		unpaged = v
	}

	if unpaged {
		h.logger.DebugContext(ctx, "Received request to list all products")
		list, err := h.service.GetAllProducts(ctx)
		if err != nil {
			h.respondServiceError(w, r, err, "Failed to fetch products")
			return
		}
		web.RespondSuccess(w, h.logger, http.StatusOK, "Products retrieved successfully", toResponses(list))
		return
	}

	page, ok := web.ParseValidateGteOr(r, w, h.logger, "page", 0, 0)
	if !ok {
		return
	}
	size, ok := web.ParseValidateGtOr(r, w, h.logger, "size", 0, defaultPageSize)
	if !ok {
		return
	}
	sort := query.Get("sort")
	if sort == "" {
		sort = string(model.SortByID)
	}
	req := model.PageRequest{
		Page:      int(page),
		Size:      int(size),
		Sort:      model.SortField(sort),
		Direction: model.ParseDirection(query.Get("direction")),
	}
	h.logger.DebugContext(ctx, "Received request to list products", "page", req.Page, "size", req.Size, "sort", req.Sort, "direction", req.Direction)

	result, err := h.service.GetProductsPage(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch products")
		return
	}
	web.RespondSuccess(w, h.logger, http.StatusOK, "Products page retrieved successfully", toPageResponse(result))
}

// FindByID retrieves a product by its ID, including soft-deleted ones.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	found, exists, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	if !exists {
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
		return
	}
	web.RespondSuccess(w, h.logger, http.StatusOK, "Product found", toResponse(*found))
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	created, err := h.service.CreateProduct(r.Context(), body.toModel())
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondSuccess(w, h.logger, http.StatusCreated, "Product created successfully", toResponse(*created))
}

// Update replaces the editable fields of a product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	body, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	updated, err := h.service.UpdateProduct(r.Context(), id, body.toModel())
	if err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to update product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondSuccess(w, h.logger, http.StatusOK, "Product updated successfully", toResponse(*updated))
}

// Delete soft-deletes a product.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to delete product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondSuccess(w, h.logger, http.StatusOK, "Product deleted successfully", nil)
}

func (h *Handler) FindByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	list, err := h.service.GetProductsByCategory(r.Context(), category)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch products by category")
		return
	}
	web.RespondSuccess(w, h.logger, http.StatusOK, fmt.Sprintf("Products in category %s", category), toResponses(list))
}

func (h *Handler) FindByPriceRange(w http.ResponseWriter, r *http.Request) {
	minPrice, ok := h.parseDecimal(w, r, "minPrice")
	if !ok {
		return
	}
	maxPrice, ok := h.parseDecimal(w, r, "maxPrice")
	if !ok {
		return
	}
	list, err := h.service.GetProductsByPriceRange(r.Context(), minPrice, maxPrice)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch products by price range")
		return
	}
	web.RespondSuccess(w, h.logger, http.StatusOK, "Products in price range", toResponses(list))
}

func (h *Handler) SearchByName(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("name") {
		web.RespondError(w, h.logger, http.StatusBadRequest, "name url parameter is required")
		return
	}
	list, err := h.service.SearchProductsByName(r.Context(), query.Get("name"))
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to search products")
		return
	}
	web.RespondSuccess(w, h.logger, http.StatusOK, "Products matching name", toResponses(list))
}

func (h *Handler) FindLowStock(w http.ResponseWriter, r *http.Request) {
	threshold, ok := web.ParseValidateGte(r, w, h.logger, "minStock", 0)
	if !ok {
		return
	}
	list, err := h.service.GetProductsWithLowStock(r.Context(), threshold)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch low stock products")
		return
	}
	web.RespondSuccess(w, h.logger, http.StatusOK, "Products with low stock", toResponses(list))
}

// UpdateStock overwrites the stock of a product from the stock query parameter.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	stock, ok := web.ParseValidateGte(r, w, h.logger, "stock", 0)
	if !ok {
		return
	}
	updated, err := h.service.UpdateStock(r.Context(), id, stock)
	if err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to update stock for product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Stock updated successfully for product", "ID", updated.ID, "NewStock", updated.Stock)
	web.RespondSuccess(w, h.logger, http.StatusOK, "Stock updated successfully", toResponse(*updated))
}

// HealthCheck answers 503 when the storage cannot be reached.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "Health check failed", "error", err)
		web.RespondError(w, h.logger, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}
	web.RespondSuccess(w, h.logger, http.StatusOK, "OK", nil)
}

func (h *Handler) decodeProduct(w http.ResponseWriter, r *http.Request) (ProductRequest, bool) {
	var body ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return body, false
	}
	if err := h.validate.Struct(body); err != nil {
		if errs, ok := fieldErrors(err); ok {
			h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errs)
			web.RespondErrorData(w, h.logger, http.StatusBadRequest, "Validation failed", map[string]any{validationKey: errs})
			return body, false
		}
		h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return body, false
	}
	return body, true
}

func (h *Handler) parseDecimal(w http.ResponseWriter, r *http.Request, key string) (decimal.Decimal, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("%s url parameter is required", key))
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, raw))
		return decimal.Zero, false
	}
	return d, true
}

// respondServiceError maps catalog error kinds to HTTP statuses. fallback is the message for unexpected failures.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	ctx := r.Context()
	var validationErr *perrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.logger.WarnContext(ctx, "Invalid request", "error", err)
		web.RespondErrorData(w, h.logger, http.StatusBadRequest, validationErr.Error(),
			map[string]any{validationKey: map[string]string{validationErr.Field: validationErr.Reason}})
	case errors.Is(err, perrors.ErrProductNotFound):
		h.logger.WarnContext(ctx, "Product not found", "error", err)
		web.RespondError(w, h.logger, http.StatusNotFound, "Product not found")
	case errors.Is(err, perrors.ErrNameConflict):
		h.logger.WarnContext(ctx, "Product name conflict", "error", err)
		web.RespondError(w, h.logger, http.StatusConflict, "An active product with this name already exists")
	default:
		h.logger.ErrorContext(ctx, fallback, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fallback)
	}
}
