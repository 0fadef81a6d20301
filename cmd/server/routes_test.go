package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"astraldraw.backend/internal/interfaces/http/handlers"
)

func TestRegisterAPIV1Routes_RegistersKeyRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	registerAPIV1Routes(r, routeDeps{
		authHandler:       &handlers.AuthHandler{},
		walletHandler:     &handlers.WalletHandler{},
		drawHandler:       &handlers.DrawHandler{},
		ventureHandler:    &handlers.VentureHandler{},
		governanceHandler: &handlers.GovernanceHandler{},
		alertHandler:      &handlers.AlertHandler{},
		statsHandler:      &handlers.StatsHandler{},
		authMiddleware: func(c *gin.Context) {
			c.Next()
		},
	})

	routes := r.Routes()
	if len(routes) < 30 {
		t.Fatalf("expected many routes registered, got %d", len(routes))
	}

	expects := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/auth/register"},
		{"GET", "/api/v1/auth/me"},
		{"GET", "/api/v1/wallets/me/balance"},
		{"POST", "/api/v1/wallets/me/buy-astra"},
		{"GET", "/api/v1/draws/active"},
		{"GET", "/api/v1/draws/winners"},
		{"POST", "/api/v1/draws/:id/keys"},
		{"POST", "/api/v1/ventures/:id/tickets"},
		{"GET", "/api/v1/ventures/:id/cap-table"},
		{"POST", "/api/v1/governance/nfts"},
		{"POST", "/api/v1/governance/proposals/:id/votes"},
		{"GET", "/api/v1/governance/marketplace"},
		{"GET", "/api/v1/alerts"},
		{"GET", "/api/v1/stats"},
		{"POST", "/api/v1/admin/draws"},
		{"POST", "/api/v1/admin/draws/:id/process"},
	}

	for _, exp := range expects {
		found := false
		for _, route := range routes {
			if route.Method == exp.method && route.Path == exp.path {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("route %s %s not registered", exp.method, exp.path)
		}
	}
}

func TestHealthRoute_Responds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerHealthRoute(r)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestMetricsRoute_Responds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerMetricsRoute(r)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCORSMiddleware_HandlesPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	applyCORSMiddleware(r)
	registerHealthRoute(r)

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS headers on preflight response")
	}
}
