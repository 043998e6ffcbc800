package handlers

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/sessions"

	"microblog/internal/auth"
	"microblog/internal/config"
	"microblog/internal/models"
	"microblog/internal/storage"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// StoreContextKey is the context key for the per-request store handle.
	StoreContextKey contextKey = "store"
	// SessionName is the name of the session cookie.
	SessionName = "session"
	// loggedInKey is the session value holding the auth flag.
	loggedInKey = "logged_in"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	cfg      *config.Config
	sessions *sessions.CookieStore
	logger   *slog.Logger
}

// New creates a Handlers instance backed by a signed cookie session store.
func New(cfg *config.Config, logger *slog.Logger) *Handlers {
	store := sessions.NewCookieStore([]byte(cfg.Auth.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Web.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	return &Handlers{cfg: cfg, sessions: store, logger: logger}
}

// WithStore opens a store handle for the request and guarantees it is
// released on every exit path, including a panicking handler.
func (h *Handlers) WithStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		db, err := storage.Open(h.cfg.Store.Path)
		if err != nil {
			h.logger.Error("open store", "err", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		defer db.Close()

		ctx := context.WithValue(r.Context(), StoreContextKey, db)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// StoreFromContext retrieves the per-request store handle.
func StoreFromContext(r *http.Request) *storage.DB {
	if db, ok := r.Context().Value(StoreContextKey).(*storage.DB); ok {
		return db
	}
	return nil
}

// RequireLogin gates state-changing routes. Unauthenticated requests
// are answered with 401, not a login redirect.
func (h *Handlers) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.isLoggedIn(r) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) isLoggedIn(r *http.Request) bool {
	sess, err := h.sessions.Get(r, SessionName)
	if err != nil {
		// An undecodable cookie (stale or tampered) counts as logged out.
		return false
	}
	flag, ok := sess.Values[loggedInKey].(bool)
	return ok && flag
}

func (h *Handlers) addFlash(w http.ResponseWriter, r *http.Request, msg string) {
	sess, _ := h.sessions.Get(r, SessionName)
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		h.logger.Error("save session", "err", err)
	}
}

// flashes drains pending flash messages. Must run before the response
// body is written, since draining rewrites the session cookie.
func (h *Handlers) flashes(w http.ResponseWriter, r *http.Request) []string {
	sess, _ := h.sessions.Get(r, SessionName)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		h.logger.Error("save session", "err", err)
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}

// ListViewModel is the data passed to the list view template.
type ListViewModel struct {
	Entries  []models.Entry
	LoggedIn bool
	Flashes  []string
	Error    string
}

// EntryViewModel is the data passed to the edit and delete views.
type EntryViewModel struct {
	Entry    *models.Entry
	LoggedIn bool
	Flashes  []string
	Error    string
}

// PageViewModel is the data passed to views without entry content.
type PageViewModel struct {
	LoggedIn bool
	Flashes  []string
	Error    string
}

// ListEntries renders all entries, newest first. An empty store renders
// the "no entries yet" state, not an error.
func (h *Handlers) ListEntries(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, "")
}

func (h *Handlers) renderList(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	entries, err := StoreFromContext(r).ListEntries()
	if err != nil {
		h.logger.Error("list entries", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, status, "list.html", ListViewModel{
		Entries:  entries,
		LoggedIn: h.isLoggedIn(r),
		Flashes:  h.flashes(w, r),
		Error:    errMsg,
	})
}

// CreateEntry inserts a new entry and redirects to the listing.
func (h *Handlers) CreateEntry(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	text := strings.TrimSpace(r.FormValue("text"))

	if _, err := StoreFromContext(r).CreateEntry(title, text); err != nil {
		if errors.Is(err, storage.ErrValidation) {
			h.renderList(w, r, http.StatusBadRequest, "Title and text are required.")
			return
		}
		h.logger.Error("create entry", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.addFlash(w, r, "New entry was successfully posted")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EditEntryForm renders the form to edit an existing entry.
func (h *Handlers) EditEntryForm(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookupEntry(w, r)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, "edit.html", EntryViewModel{
		Entry:    entry,
		LoggedIn: true,
		Flashes:  h.flashes(w, r),
	})
}

// UpdateEntry replaces an entry's title and text and redirects to the
// listing. The entry id is stable across edits.
func (h *Handlers) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	text := strings.TrimSpace(r.FormValue("text"))

	err = StoreFromContext(r).UpdateEntry(id, title, text)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		h.NotFound(w, r)
	case errors.Is(err, storage.ErrValidation):
		h.render(w, http.StatusBadRequest, "edit.html", EntryViewModel{
			Entry:    &models.Entry{ID: id, Title: title, Text: text},
			LoggedIn: true,
			Error:    "Title and text are required.",
		})
	case err != nil:
		h.logger.Error("update entry", "id", id, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	default:
		h.addFlash(w, r, "Entry was successfully updated")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// DeleteEntryForm renders the confirmation page before deletion.
func (h *Handlers) DeleteEntryForm(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookupEntry(w, r)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, "delete.html", EntryViewModel{
		Entry:    entry,
		LoggedIn: true,
		Flashes:  h.flashes(w, r),
	})
}

// DeleteEntry removes an entry permanently and redirects to the listing.
func (h *Handlers) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	err = StoreFromContext(r).DeleteEntry(id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		h.NotFound(w, r)
	case err != nil:
		h.logger.Error("delete entry", "id", id, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	default:
		h.addFlash(w, r, "Entry was successfully deleted")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// LoginForm renders the login page. An already authenticated session is
// sent back to the listing.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.isLoggedIn(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, "login.html", PageViewModel{
		Flashes: h.flashes(w, r),
	})
}

// Login checks the submitted credentials against the configured admin
// identity. The session flag is set only on the single branch where
// every credential check passed; any mismatch falls through to the same
// generic failure message, which never reveals which field was wrong.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "login.html", PageViewModel{
			Error: "Invalid form submission",
		})
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if auth.VerifyLogin(username, password, h.cfg.Auth.AdminUser, h.cfg.Auth.AdminPasswordHash) {
		sess, _ := h.sessions.Get(r, SessionName)
		sess.Values[loggedInKey] = true
		sess.AddFlash("You were logged in")
		if err := sess.Save(r, w); err != nil {
			h.logger.Error("save session", "err", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.render(w, http.StatusUnauthorized, "login.html", PageViewModel{
		Error: "Invalid username or password",
	})
}

// Logout clears the session flag unconditionally. Logging out an
// already logged-out session is a no-op.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.sessions.Get(r, SessionName)
	delete(sess.Values, loggedInKey)
	sess.AddFlash("You were logged out")
	if err := sess.Save(r, w); err != nil {
		h.logger.Error("save session", "err", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// NotFound renders the generic not-found page.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "404.html", PageViewModel{
		LoggedIn: h.isLoggedIn(r),
	})
}

// lookupEntry resolves the {id} path value to an entry, writing the
// not-found or error response itself when resolution fails.
func (h *Handlers) lookupEntry(w http.ResponseWriter, r *http.Request) (*models.Entry, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.NotFound(w, r)
		return nil, false
	}

	entry, err := StoreFromContext(r).GetEntry(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.NotFound(w, r)
		} else {
			h.logger.Error("get entry", "id", id, "err", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return nil, false
	}
	return entry, true
}

func (h *Handlers) render(w http.ResponseWriter, status int, viewName string, data any) {
	tmpl, err := template.ParseFiles(
		filepath.Join(h.cfg.Web.TemplateDir, "base.html"),
		filepath.Join(h.cfg.Web.TemplateDir, viewName),
	)
	if err != nil {
		h.logger.Error("parse templates", "view", viewName, "err", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		h.logger.Error("execute template", "view", viewName, "err", err)
	}
}
