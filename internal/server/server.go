package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"buyzo/internal/catalog"
	"buyzo/internal/config"
	"buyzo/internal/docstore"
	"buyzo/internal/identity"
	custommiddleware "buyzo/internal/middleware"
	"buyzo/internal/orders"
	"buyzo/internal/session"
	"buyzo/internal/store"
	"buyzo/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config   *config.Config
	logger   *zap.Logger
	db       *sql.DB
	sessions *session.Manager
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The remote data service: document store plus identity provider
	docs := docstore.NewPostgres(db)
	provider := identity.NewService(docs, cfg.Auth.JWTSecret)

	// Application state: one store per user, one shared product cache
	registry := store.NewRegistry()
	productCache := store.New()

	// Initialize services
	sessions := session.NewManager(provider, docs, registry, cfg.Auth.AdminEmails, logger)
	catalogService := catalog.NewService(docs, logger)
	ordersService := orders.NewService(docs, logger)

	// Initialize handlers
	authHandler := transport.NewAuthHandler(sessions, logger)
	productHandler := transport.NewProductHandler(catalogService, productCache, logger)
	cartHandler := transport.NewCartHandler(catalogService, registry, logger)
	orderHandler := transport.NewOrderHandler(ordersService, logger)
	adminHandler := transport.NewAdminHandler(docs, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(provider, logger)
	adminMiddleware := custommiddleware.RequireAdmin(sessions, logger)

	// Credential endpoints are rate limited
	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 20,
			Window:            time.Minute,
			KeyPrefix:         "ratelimit:auth",
		}, logger))
		authHandler.RegisterRoutes(r, authMiddleware)
	})

	productHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	cartHandler.RegisterRoutes(router, authMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	adminHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:   cfg,
		logger:   logger,
		db:       db,
		sessions: sessions,
	}

	return server
}

// RunSessionManager consumes the identity-change feed until ctx is done.
// Meant to run on its own goroutine for the life of the server.
func (s *Server) RunSessionManager(ctx context.Context) {
	s.sessions.Run(ctx)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
