// ABOUTME: Project CRUD endpoints composing verifier, ownership guard, and store
// ABOUTME: The owner is always server-derived from the principal, never from the payload

package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/store"
)

// projectCreateRequest carries the client-settable fields of a new project.
// There is no owner field: created_by comes from the authenticated principal.
type projectCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// projectUpdateRequest carries the mutable fields of a project. Unknown JSON
// fields (including any owner-ish ones) are dropped by the decoder, so an
// adversarial payload degrades to a no-op rather than an ownership change.
type projectUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type projectResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toProjectResponse(p *store.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleProjectsList(w http.ResponseWriter, r *http.Request) {
	principal := s.principal(r)
	if principal == nil {
		unauthorized(w)
		return
	}

	projects, err := s.store.ListProjects(r.Context(), principal.ID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string][]projectResponse{"projects": out})
}

func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	principal := s.principal(r)
	if principal == nil {
		unauthorized(w)
		return
	}

	var req projectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if len(req.Title) > 255 {
		writeError(w, http.StatusBadRequest, "title must be at most 255 characters")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	now := time.Now().UTC()
	project := &store.Project{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   principal.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateProject(r.Context(), project); err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]projectResponse{"project": toProjectResponse(project)})
}

func (s *Server) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	principal := s.principal(r)
	if principal == nil {
		unauthorized(w)
		return
	}

	id := r.PathValue("id")
	if err := s.guard.Project(r.Context(), principal.ID, id); err != nil {
		s.respondError(w, err)
		return
	}

	project, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]projectResponse{"project": toProjectResponse(project)})
}

func (s *Server) handleProjectUpdate(w http.ResponseWriter, r *http.Request) {
	principal := s.principal(r)
	if principal == nil {
		unauthorized(w)
		return
	}

	id := r.PathValue("id")
	if err := s.guard.Project(r.Context(), principal.ID, id); err != nil {
		s.respondError(w, err)
		return
	}

	var req projectUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			writeError(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		if len(trimmed) > 255 {
			writeError(w, http.StatusBadRequest, "title must be at most 255 characters")
			return
		}
		req.Title = &trimmed
	}

	project, err := s.store.UpdateProject(r.Context(), id, store.ProjectUpdate{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]projectResponse{"project": toProjectResponse(project)})
}

func (s *Server) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	principal := s.principal(r)
	if principal == nil {
		unauthorized(w)
		return
	}

	id := r.PathValue("id")
	if err := s.guard.Project(r.Context(), principal.ID, id); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.store.DeleteProject(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
