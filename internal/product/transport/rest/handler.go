// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"

	perrors "github.com/abgdnv/catalog/internal/product/errors"
	"github.com/abgdnv/catalog/internal/product/service"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of Handler with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: newValidator(),
		logger:   logger.With("component", "rest"),
	}
}

// newValidator returns a validator that compares decimal.Decimal fields as numbers.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)
		r.Get("/paged", h.FindPage)
		r.Put("/add-to-stock/{id}/{quantity}", h.IncreaseStock)
		r.Put("/decrement-to-stock/{id}/{quantity}", h.DecreaseStock)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}

	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, id, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID)
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// FindAll retrieves a list of all products.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received request to find all products")
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// FindPage retrieves one page of products selected by the pageNumber and pageSize query parameters.
func (h *Handler) FindPage(w http.ResponseWriter, r *http.Request) {
	pageNumber, ok := web.ParseQueryInt32(w, r, h.logger, "pageNumber", 1)
	if !ok {
		return
	}
	pageSize, ok := web.ParseQueryInt32(w, r, h.logger, "pageSize", 1)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to find products page", "pageNumber", pageNumber, "pageSize", pageSize)
	list, err := h.service.FindPage(r.Context(), pageNumber, pageSize)
	if err != nil {
		if errors.Is(err, perrors.ErrInvalidPage) {
			web.RespondError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "Error retrieving product page", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var productCreateDto service.ProductCreateDto
	if !h.decodeAndValidate(w, r, &productCreateDto) {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to create product", "product", productCreateDto)

	newProduct, err := h.service.Create(r.Context(), productCreateDto)
	if err != nil {
		h.respondServiceError(w, r, err, 0, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID)
	w.Header().Set("Location", fmt.Sprintf("/products/%d", newProduct.ID))
	web.RespondJSON(w, h.logger, http.StatusCreated, newProduct)
}

// Update overwrites a product. The ID in the body must match the path.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	var productDTO service.ProductDto
	if !h.decodeAndValidate(w, r, &productDTO) {
		return
	}
	if productDTO.ID != id {
		h.logger.WarnContext(r.Context(), "ID mismatch between route and body", "ID", id, "bodyID", productDTO.ID)
		web.RespondError(w, h.logger, http.StatusBadRequest, "ID mismatch between route and body")
		return
	}

	updated, err := h.service.Update(r.Context(), productDTO)
	if err != nil {
		h.respondServiceError(w, r, err, id, fmt.Sprintf("Failed to update product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Version", updated.Version)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, id, fmt.Sprintf("Failed to delete product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusOK)
}

// IncreaseStock adds the quantity path value to the product's stock.
func (h *Handler) IncreaseStock(w http.ResponseWriter, r *http.Request) {
	id, quantity, ok := h.parseStockParams(w, r)
	if !ok {
		return
	}
	updated, err := h.service.IncreaseStock(r.Context(), id, quantity)
	if err != nil {
		h.respondServiceError(w, r, err, id, fmt.Sprintf("Failed to increase stock for product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Stock increased", "ID", id, "quantity", quantity, "stock", updated.Stock)
	web.RespondMessage(w, h.logger, http.StatusOK, fmt.Sprintf("Stock increased by %d for Product ID %d.", quantity, id))
}

// DecreaseStock removes the quantity path value from the product's stock.
// A missing product and insufficient stock both answer 404.
func (h *Handler) DecreaseStock(w http.ResponseWriter, r *http.Request) {
	id, quantity, ok := h.parseStockParams(w, r)
	if !ok {
		return
	}
	updated, err := h.service.DecreaseStock(r.Context(), id, quantity)
	if err != nil {
		h.respondServiceError(w, r, err, id, fmt.Sprintf("Failed to decrease stock for product with ID %d", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Stock decreased", "ID", id, "quantity", quantity, "stock", updated.Stock)
	web.RespondMessage(w, h.logger, http.StatusOK, fmt.Sprintf("Stock decreased by %d for Product ID %d.", quantity, id))
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) parseStockParams(w http.ResponseWriter, r *http.Request) (id, quantity int32, ok bool) {
	if id, ok = web.ParseID(w, r, h.logger); !ok {
		return 0, 0, false
	}
	if quantity, ok = web.ParsePathInt32(w, r, h.logger, "quantity"); !ok {
		return 0, 0, false
	}
	h.logger.DebugContext(r.Context(), "Received request to change stock", "ID", id, "quantity", quantity)
	return id, quantity, true
}

// decodeAndValidate reads the JSON body into dst and runs struct validation.
// On failure the response is already written.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondServiceError translates a service error into a status code and JSON error body.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, id int32, fallback string) {
	switch {
	case errors.Is(err, perrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
	case errors.Is(err, perrors.ErrInsufficientStock):
		h.logger.WarnContext(r.Context(), "Insufficient stock", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Insufficient stock for product with ID %d", id))
	case errors.Is(err, perrors.ErrConcurrencyConflict):
		h.logger.WarnContext(r.Context(), "Concurrency conflict", "ID", id)
		web.RespondError(w, h.logger, http.StatusConflict, fmt.Sprintf("Product with ID %d was modified by another request", id))
	case errors.Is(err, perrors.ErrNegativeStock),
		errors.Is(err, perrors.ErrNegativePrice),
		errors.Is(err, perrors.ErrInvalidPrice),
		errors.Is(err, perrors.ErrInvalidQuantity):
		h.logger.WarnContext(r.Context(), "Rejected product change", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, rootCause(err))
	default:
		h.logger.ErrorContext(r.Context(), "Product operation failed", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fallback)
	}
}

// rootCause returns the message of the matching sentinel rather than the wrapped chain.
func rootCause(err error) string {
	for _, sentinel := range []error{perrors.ErrNegativeStock, perrors.ErrNegativePrice, perrors.ErrInvalidPrice, perrors.ErrInvalidQuantity} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
