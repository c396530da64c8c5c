package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"buyzo/internal/catalog"
	"buyzo/internal/docstore"
	"buyzo/internal/identity"
	"buyzo/internal/middleware"
	"buyzo/internal/orders"
	"buyzo/internal/session"
	"buyzo/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// testEnv wires the handlers the way the server does, against the in-memory
// document store.
type testEnv struct {
	router   chi.Router
	docs     docstore.Store
	stores   *store.Registry
	sessions *session.Manager
	catalog  *catalog.Service
	products *store.Store
}

func newTestEnv(t *testing.T, adminEmails ...string) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	docs := docstore.NewMemory()
	provider := identity.NewService(docs, "test-secret")
	stores := store.NewRegistry()
	sessions := session.NewManager(provider, docs, stores, adminEmails, logger)
	catalogService := catalog.NewService(docs, logger)
	ordersService := orders.NewService(docs, logger)
	products := store.New()

	authMW := middleware.AuthMiddleware(provider, logger)
	adminMW := middleware.RequireAdmin(sessions, logger)

	r := chi.NewRouter()
	NewAuthHandler(sessions, logger).RegisterRoutes(r, authMW)
	NewCartHandler(catalogService, stores, logger).RegisterRoutes(r, authMW)
	NewProductHandler(catalogService, products, logger).RegisterRoutes(r, authMW, adminMW)
	NewOrderHandler(ordersService, logger).RegisterRoutes(r, authMW, adminMW)
	NewAdminHandler(docs, logger).RegisterRoutes(r, authMW, adminMW)

	return &testEnv{
		router:   r,
		docs:     docs,
		stores:   stores,
		sessions: sessions,
		catalog:  catalogService,
		products: products,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) signup(t *testing.T, email, name string) (string, string) {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:    email,
		Password: "secret1",
		Name:     name,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup failed with status %d: %s", rr.Code, rr.Body.String())
	}

	resp := AuthResponse{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode signup response: %v", err)
	}
	return resp.User.UID, resp.Token
}

func (e *testEnv) seedProduct(t *testing.T, title string, price float64, category string) string {
	t.Helper()

	id, err := e.catalog.AddProduct(context.Background(), productFromRequest(ProductRequest{
		Title:    title,
		Price:    price,
		Category: category,
		ImageURL: "http://img/" + title,
	}), "seed-admin")
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return id
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return out
}
