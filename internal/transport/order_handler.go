package transport

import (
	"net/http"

	"buyzo/internal/middleware"
	"buyzo/internal/orders"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for order listings
type OrderHandler struct {
	orders *orders.Service
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(ordersService *orders.Service, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: ordersService, logger: logger}
}

// RegisterRoutes registers the customer and admin order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListOwn)
	})

	r.Route("/api/admin/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/", h.ListAll)
	})
}

// ListOwn returns the authenticated customer's orders
func (h *OrderHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentity(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.orders.ListByEmail(r.Context(), ident.Email)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, list)
}

// ListAll returns every order for the admin panel
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, list)
}
