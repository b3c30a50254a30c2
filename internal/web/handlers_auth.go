// ABOUTME: Registration, login, logout, and identity endpoints
// ABOUTME: Issues the session credential at login and clears it at logout

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/store"
)

// dummyHash is a bcrypt hash compared against when the user doesn't exist,
// keeping login timing independent of email validity.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.respondError(w, err)
		return
	}

	user := &store.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		s.respondError(w, err)
		return
	}

	if err := s.issueSession(w, r, user); err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.Info("user registered", "id", user.ID)
	writeJSON(w, http.StatusCreated, map[string]userResponse{
		"user": {ID: user.ID, Email: user.Email, Name: user.Name},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Dummy comparison keeps timing constant for unknown emails
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(req.Password))
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		s.respondError(w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := s.issueSession(w, r, user); err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.Info("user logged in", "id", user.ID)
	writeJSON(w, http.StatusOK, map[string]userResponse{
		"user": {ID: user.ID, Email: user.Email, Name: user.Name},
	})
}

// issueSession creates a credential for the user and hands it to the client
// as the session cookie.
func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, user *store.User) error {
	credential, err := s.codec.Issue(user.ID, user.Name, s.tokenTTL)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(w, r, credential, s.tokenTTL)
	return nil
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := s.principal(r)
	if principal == nil {
		unauthorized(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]userResponse{
		"user": {ID: principal.ID, Name: principal.Name},
	})
}
