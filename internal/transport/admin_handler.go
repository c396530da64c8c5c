package transport

import (
	"net/http"

	"buyzo/internal/docstore"
	"buyzo/internal/domain"
	"buyzo/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminUser is a row in the admin users listing
type AdminUser struct {
	ID string `json:"id"`
	domain.UserRecord
}

// DashboardStats carries the collection counts for the admin dashboard
type DashboardStats struct {
	Products int `json:"products"`
	Orders   int `json:"orders"`
	Users    int `json:"users"`
}

// AdminHandler handles the admin dashboard surface: the users listing and
// the collection counts
type AdminHandler struct {
	docs   docstore.Store
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(docs docstore.Store, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{docs: docs, logger: logger}
}

// RegisterRoutes registers the admin dashboard routes
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/users", h.ListUsers)
		r.Get("/stats", h.Stats)
	})
}

// ListUsers returns every persisted user record
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.QueryCollection(r.Context(), "users", docstore.Query{
		OrderBy: &docstore.OrderBy{Field: "createdAt", Desc: true},
	})
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	users := []AdminUser{}
	for _, doc := range docs {
		user := AdminUser{ID: doc.ID}
		if err := docstore.Decode(doc.Data, &user.UserRecord); err != nil {
			h.logger.Error("Failed to decode user record", zap.String("uid", doc.ID), zap.Error(err))
			continue
		}
		users = append(users, user)
	}

	middleware.RespondWithJSON(w, http.StatusOK, users)
}

// Stats returns the dashboard collection counts. A count failure for one
// collection reports zero for it rather than failing the dashboard.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := DashboardStats{}

	for _, c := range []struct {
		name  string
		field *int
	}{
		{"products", &stats.Products},
		{"orders", &stats.Orders},
		{"users", &stats.Users},
	} {
		n, err := h.docs.Count(r.Context(), c.name)
		if err != nil {
			h.logger.Warn("Failed to count collection", zap.String("collection", c.name), zap.Error(err))
			continue
		}
		*c.field = n
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}
