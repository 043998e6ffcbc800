package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"microblog/internal/auth"
	"microblog/internal/config"
	"microblog/internal/handlers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	hash, err := auth.HashPassword("default")
	require.NoError(t, err, "failed to hash test password")

	return &config.Config{
		Auth: config.AuthConfig{
			SessionSecret:     "test-secret",
			AdminUser:         "admin",
			AdminPasswordHash: hash,
		},
		Store: config.StoreConfig{
			Path: filepath.Join(t.TempDir(), "blog.db"),
		},
		Web: config.WebConfig{
			// Relative paths for tests running in cmd/server
			TemplateDir: "../../web/templates",
			StaticDir:   "../../web/static",
		},
	}
}

func TestSetupRouter(t *testing.T) {
	cfg := testConfig(t)

	if _, err := os.Stat(cfg.Web.TemplateDir); os.IsNotExist(err) {
		t.Skip("Template directory not found, skipping router test")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handlers.New(cfg, logger)
	mux := setupRouter(h, cfg.Web.StaticDir)

	tests := []struct {
		name       string
		method     string
		path       string
		form       url.Values
		wantStatus int
		allowAlt   []int // Alternative acceptable status codes
	}{
		{
			name:       "Listing is public",
			method:     "GET",
			path:       "/",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Login form is public",
			method:     "GET",
			path:       "/login",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Static file access",
			method:     "GET",
			path:       "/static/style.css",
			wantStatus: http.StatusOK,
			allowAlt:   []int{http.StatusNotFound}, // File might not exist in test env
		},
		{
			name:       "Create requires auth",
			method:     "POST",
			path:       "/add",
			form:       url.Values{"title": {"t"}, "text": {"x"}},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Edit form requires auth",
			method:     "GET",
			path:       "/edit/1",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Delete requires auth",
			method:     "POST",
			path:       "/delete/1",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Unknown route is 404",
			method:     "GET",
			path:       "/does-not-exist",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.form != nil {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.form.Encode()))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			} else {
				req = httptest.NewRequest(tt.method, tt.path, http.NoBody)
			}
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if len(tt.allowAlt) > 0 {
				acceptableStatuses := append([]int{tt.wantStatus}, tt.allowAlt...)
				assert.Contains(t, acceptableStatuses, w.Code,
					"%s %s returned unexpected status", tt.method, tt.path)
			} else {
				assert.Equal(t, tt.wantStatus, w.Code,
					"%s %s returned unexpected status", tt.method, tt.path)
			}
		})
	}
}
