package transport

import (
	"errors"
	"net/http"

	"buyzo/internal/docstore"
	"buyzo/internal/identity"
	"buyzo/internal/middleware"
	"buyzo/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SignupRequest represents the signup request payload
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents a profile edit payload
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required"`
}

// AuthResponse carries a session token with the identity it belongs to
type AuthResponse struct {
	Token string            `json:"token"`
	User  identity.Identity `json:"user"`
}

// AuthHandler handles HTTP requests for session operations
type AuthHandler struct {
	sessions *session.Manager
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions *session.Manager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
		})
	})
}

// Signup handles account creation
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Signup validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ident, token, err := h.sessions.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.logger.Error("Signup failed", zap.Error(err))

		switch {
		case errors.Is(err, identity.ErrEmailInUse):
			middleware.RespondWithError(w, http.StatusConflict, "email already in use")
		case errors.Is(err, identity.ErrWeakPassword):
			middleware.RespondWithError(w, http.StatusBadRequest, "password is too weak")
		default:
			// Includes the partial-failure case where the credential was
			// created but the profile write failed; never a silent success.
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to sign up")
		}
		return
	}

	h.logger.Info("User signed up", zap.String("uid", ident.UID))
	middleware.RespondWithJSON(w, http.StatusCreated, AuthResponse{Token: token, User: *ident})
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ident, token, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))

		if errors.Is(err, identity.ErrInvalidCredentials) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.logger.Info("User logged in", zap.String("uid", ident.UID))
	middleware.RespondWithJSON(w, http.StatusOK, AuthResponse{Token: token, User: *ident})
}

// Logout handles session teardown
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentity(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.sessions.Logout(r.Context(), ident.UID); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// GetProfile returns the persisted user record
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentity(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.sessions.Profile(r.Context(), ident.UID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "profile not found")
			return
		}

		h.logger.Error("Failed to get profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profile)
}

// UpdateProfile applies a profile edit
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.GetIdentity(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Profile validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessions.UpdateProfile(r.Context(), ident.UID, docstore.Record{"name": req.Name}); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "profile not found")
			return
		}

		h.logger.Error("Failed to update profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "profile updated"})
}
