package transport

import (
	"errors"
	"net/http"

	"buyzo/internal/catalog"
	"buyzo/internal/middleware"
	"buyzo/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddCartItemRequest adds one unit of a product to the cart
type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// UpdateCartItemRequest sets a line's quantity
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

// CartHandler handles HTTP requests for the shopping cart. Each user gets
// their own store from the registry; the cart slice lives there.
type CartHandler struct {
	catalog *catalog.Service
	stores  *store.Registry
	logger  *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(catalogService *catalog.Service, stores *store.Registry, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		catalog: catalogService,
		stores:  stores,
		logger:  logger,
	}
}

// RegisterRoutes registers all cart routes; every route requires auth
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Put("/items/{id}", h.UpdateItem)
		r.Delete("/items/{id}", h.RemoveItem)
	})
}

// Get returns the cart ledger
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userStore, ok := h.userStore(w, r)
	if !ok {
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, userStore.State().Cart)
}

// AddItem adds one unit of a product, snapshotting its title, price, and
// image at add time
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userStore, ok := h.userStore(w, r)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Cart item validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to load product for cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}

	userStore.Dispatch(store.AddToCart{Item: store.CartItem{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
	}})

	middleware.RespondWithJSON(w, http.StatusOK, userStore.State().Cart)
}

// UpdateItem sets a line's quantity. Quantities below one are rejected here,
// at the dispatch boundary; the reducer never sees them.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userStore, ok := h.userStore(w, r)
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Cart quantity validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Quantity < 1 {
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	userStore.Dispatch(store.UpdateQuantity{
		ProductID: chi.URLParam(r, "id"),
		Quantity:  req.Quantity,
	})

	middleware.RespondWithJSON(w, http.StatusOK, userStore.State().Cart)
}

// RemoveItem deletes a line entirely
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userStore, ok := h.userStore(w, r)
	if !ok {
		return
	}

	userStore.Dispatch(store.RemoveFromCart{ProductID: chi.URLParam(r, "id")})
	middleware.RespondWithJSON(w, http.StatusOK, userStore.State().Cart)
}

// Clear empties the cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userStore, ok := h.userStore(w, r)
	if !ok {
		return
	}

	userStore.Dispatch(store.ClearCart{})
	middleware.RespondWithJSON(w, http.StatusOK, userStore.State().Cart)
}

func (h *CartHandler) userStore(w http.ResponseWriter, r *http.Request) (*store.Store, bool) {
	ident, ok := middleware.GetIdentity(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return h.stores.ForUser(ident.UID), true
}
