package transport

import (
	"errors"
	"net/http"

	"buyzo/internal/catalog"
	"buyzo/internal/domain"
	"buyzo/internal/middleware"
	"buyzo/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest represents an admin product create/edit payload
type ProductRequest struct {
	Title       string  `json:"title" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageURL" validate:"required,url"`
	Featured    bool    `json:"featured"`
}

// ProductListResponse is the storefront listing with its filter state. The
// search and category values echo the URL parameters so the filtered view
// stays shareable.
type ProductListResponse struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Search   string           `json:"search,omitempty"`
	Category string           `json:"category,omitempty"`
}

// ProductHandler handles HTTP requests for the product catalog
type ProductHandler struct {
	catalog *catalog.Service
	// products is the shared product-cache store. All storefront fetches
	// write into it; the last response to land wins.
	products *store.Store
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService *catalog.Service, products *store.Store, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog:  catalogService,
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers the storefront and admin product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/featured", h.Featured)
		r.Get("/{id}", h.Get)
	})

	r.Route("/api/admin/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List serves the filtered storefront listing. The cache is refreshed with a
// full fetch, then a category fetch when one is selected, and the filter
// pipeline derives the display list from whatever the cache ends up holding.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")
	if category == "" {
		category = domain.CategoryAll
	}

	h.catalog.FetchProducts(r.Context(), h.products)
	if category != domain.CategoryAll {
		if !domain.ValidCategory(category) {
			middleware.RespondWithError(w, http.StatusBadRequest, "unrecognized category")
			return
		}
		h.catalog.FetchProductsByCategory(r.Context(), h.products, domain.Category(category))
	}

	state := h.products.State()
	if state.Products.Err != "" {
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load products")
		return
	}

	filtered := catalog.Filter(state.Products.Products, search, category)

	resp := ProductListResponse{
		Products: filtered,
		Total:    len(filtered),
		Search:   search,
	}
	if category != domain.CategoryAll {
		resp.Category = category
	}

	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// Featured serves the featured products
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	h.catalog.FetchFeatured(r.Context(), h.products)

	state := h.products.State()
	if state.Products.Err != "" {
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: state.Products.Featured,
		Total:    len(state.Products.Featured),
	})
}

// Get serves a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to get product", zap.String("product_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create handles admin product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentity(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.catalog.AddProduct(r.Context(), productFromRequest(req), ident.UID)
	if err != nil {
		if isProductValidationError(err) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error("Failed to add product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Update handles admin product edits
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.catalog.UpdateProduct(r.Context(), id, productFromRequest(req)); err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case isProductValidationError(err):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Failed to update product", zap.String("product_id", id), zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product updated"})
}

// Delete handles admin product deletion
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func productFromRequest(req ProductRequest) domain.Product {
	return domain.Product{
		Title:       req.Title,
		Price:       req.Price,
		Category:    domain.Category(req.Category),
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Featured:    req.Featured,
	}
}

func isProductValidationError(err error) bool {
	return errors.Is(err, catalog.ErrInvalidPrice) ||
		errors.Is(err, catalog.ErrInvalidCategory) ||
		errors.Is(err, catalog.ErrMissingImageURL)
}
