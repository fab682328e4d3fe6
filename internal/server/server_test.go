package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/fleveque/pet-composer/internal/config"
	"github.com/fleveque/pet-composer/internal/middleware"
	"github.com/fleveque/pet-composer/internal/render"
	"github.com/fleveque/pet-composer/internal/service"
	"github.com/fleveque/pet-composer/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fonts, err := render.DefaultFontSet()
	if err != nil {
		t.Fatalf("loading fonts: %v", err)
	}
	logger := zap.NewNop()
	renderer := render.NewRenderer(fonts, render.DefaultTheme(), nil, logger)

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, MaxUploadMB: 1},
		Auth:   config.AuthConfig{APIKeys: []string{"user-key"}, AdminKeys: []string{"admin-key"}},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Log:    config.LogConfig{Level: "info"},
	}
	return New(cfg, Deps{
		Images:       service.NewImageProcessor(0, logger),
		Composer:     service.NewComposer(renderer, 0, logger),
		CaptionCalls: storage.NewCaptionCallRepository(db),
	}, logger)
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		key    string
		want   int
	}{
		{"health is public", "GET", "/healthz", "", http.StatusOK},
		{"compose needs a key", "POST", "/api/v1/compose/meme", "", http.StatusUnauthorized},
		{"compose with key reaches handler", "POST", "/api/v1/compose/meme", "user-key", http.StatusBadRequest},
		{"stats needs admin key", "GET", "/api/v1/admin/stats", "user-key", http.StatusForbidden},
		{"stats with admin key", "GET", "/api/v1/admin/stats", "admin-key", http.StatusOK},
		{"unknown route", "GET", "/api/v1/logos/AAPL", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			w := httptest.NewRecorder()
			s.Router().ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if w.Header().Get(middleware.HeaderRequestID) == "" {
				t.Error("expected every response to carry a request id")
			}
		})
	}
}

func TestRoutes_Preflight(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		origin     string
		wantOrigin string
	}{
		{"compose from allowed origin", "/api/v1/compose/meme", "http://localhost:3000", "http://localhost:3000"},
		{"battle from allowed origin", "/api/v1/compose/battle", "http://localhost:3000", "http://localhost:3000"},
		{"admin from allowed origin", "/api/v1/admin/stats", "http://localhost:3000", "http://localhost:3000"},
		{"disallowed origin", "/api/v1/compose/meme", "http://evil.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Browsers send no API key on preflight, so auth must not run.
			req := httptest.NewRequest(http.MethodOptions, tt.path, nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", "POST")
			req.Header.Set("Access-Control-Request-Headers", "X-API-Key, Content-Type")
			w := httptest.NewRecorder()
			s.Router().ServeHTTP(w, req)

			if w.Code != http.StatusNoContent {
				t.Errorf("expected 204, got %d", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("expected allow-origin %q, got %q", tt.wantOrigin, got)
			}
			if tt.wantOrigin != "" && !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "X-API-Key") {
				t.Errorf("expected X-API-Key to be allowed, got %q", w.Header().Get("Access-Control-Allow-Headers"))
			}
		})
	}
}
