// ABOUTME: HTTP server wiring handlers, edge gate, verifier, guard, and store together
// ABOUTME: Translates the error taxonomy into fixed status-coded JSON responses

package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/guard"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/suggest"
)

// Server handles the dashboard pages and the JSON API.
type Server struct {
	store     store.Store
	codec     auth.TokenCodec
	verifier  *auth.Verifier
	guard     *guard.Guard
	generator suggest.Generator // nil when the suggest service is disabled
	tokenTTL  time.Duration
	logger    *slog.Logger
}

// New creates a Server. generator may be nil, in which case the AI endpoints
// report the service as unavailable.
func New(s store.Store, codec auth.TokenCodec, generator suggest.Generator, tokenTTL time.Duration) *Server {
	return &Server{
		store:     s,
		codec:     codec,
		verifier:  auth.NewVerifier(codec),
		guard:     guard.New(s),
		generator: generator,
		tokenTTL:  tokenTTL,
		logger:    slog.Default().With("component", "web"),
	}
}

// RegisterRoutes registers all routes on the given mux. The caller wraps the
// mux with the edge gate; API routes sit on the gate's skip list and enforce
// auth themselves.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Pages
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("GET /register", s.handleRegisterPage)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /dashboard/projects/{id}", s.handleProjectPage)

	// Auth API
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/me", s.handleMe)

	// Projects API
	mux.HandleFunc("GET /api/projects", s.handleProjectsList)
	mux.HandleFunc("POST /api/projects", s.handleProjectCreate)
	mux.HandleFunc("GET /api/projects/{id}", s.handleProjectGet)
	mux.HandleFunc("PUT /api/projects/{id}", s.handleProjectUpdate)
	mux.HandleFunc("DELETE /api/projects/{id}", s.handleProjectDelete)

	// Tasks API
	mux.HandleFunc("GET /api/tasks", s.handleTasksList)
	mux.HandleFunc("POST /api/tasks", s.handleTaskCreate)
	mux.HandleFunc("PUT /api/tasks/{id}", s.handleTaskUpdate)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleTaskDelete)

	// AI API
	mux.HandleFunc("POST /api/ai/suggestions", s.handleSuggestions)
	mux.HandleFunc("POST /api/ai/analyze", s.handleAnalyze)

	// Health
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.logger.Info("routes registered")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// principal re-derives the authenticated principal from the session cookie.
// Handlers must not rely on the edge gate for this: API routes bypass the
// gate entirely, and the gate is a coarse path check by design.
func (s *Server) principal(r *http.Request) *auth.Principal {
	return s.verifier.Verify(auth.CredentialFromRequest(r))
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// unauthorized is the single response for every flavor of missing, invalid,
// or expired credential.
func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthorized")
}

// respondError maps the error taxonomy to HTTP statuses: absent resources
// are 404, foreign-owned resources are 403, everything else is a generic
// 500 with the detail kept server-side.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, guard.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		s.logger.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
