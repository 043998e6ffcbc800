package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"microblog/internal/config"
	"microblog/internal/handlers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handlers.New(cfg, logger)
	mux := setupRouter(h, cfg.Web.StaticDir)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("server listening", "addr", cfg.Addr(), "db", cfg.Store.Path)
	return srv.ListenAndServe()
}

// setupRouter wires the routes. Every application route runs inside
// WithStore, so a store handle is opened at request entry and released
// on every exit path. Mutating routes are additionally gated behind
// RequireLogin.
func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	open := func(fn http.HandlerFunc) http.Handler {
		return h.WithStore(fn)
	}
	gated := func(fn http.HandlerFunc) http.Handler {
		return h.WithStore(h.RequireLogin(fn))
	}

	mux.Handle("GET /{$}", open(h.ListEntries))
	mux.Handle("POST /add", gated(h.CreateEntry))
	mux.Handle("GET /edit/{id}", gated(h.EditEntryForm))
	mux.Handle("POST /edit/{id}", gated(h.UpdateEntry))
	mux.Handle("GET /delete/{id}", gated(h.DeleteEntryForm))
	mux.Handle("POST /delete/{id}", gated(h.DeleteEntry))
	mux.Handle("GET /login", open(h.LoginForm))
	mux.Handle("POST /login", open(h.Login))
	mux.Handle("GET /logout", open(h.Logout))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	mux.Handle("/", open(h.NotFound))

	return mux
}
