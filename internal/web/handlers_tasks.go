// ABOUTME: Task CRUD endpoints with parent-project ownership enforced at creation
// ABOUTME: Updates go through the allow-listed TaskUpdate fields only

package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/store"
)

// taskCreateRequest carries the client-settable fields of a new task. As
// with projects, there is no owner field; created_by always comes from the
// authenticated principal.
type taskCreateRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	EstimatedHours *float64 `json:"estimated_hours"`
	ProjectID      string   `json:"project_id"`
}

// taskUpdateRequest carries the mutable fields of a task. project_id and
// owner are not updatable and have no representation here.
type taskUpdateRequest struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Status         *string  `json:"status"`
	Priority       *string  `json:"priority"`
	EstimatedHours *float64 `json:"estimated_hours"`
}

type taskResponse struct {
	ID             string   `json:"id"`
	ProjectID      string   `json:"project_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	EstimatedHours *float64 `json:"estimated_hours"`
	CreatedBy      string   `json:"created_by"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

func toTaskResponse(t *store.Task) taskResponse {
	return taskResponse{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		EstimatedHours: t.EstimatedHours,
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func validStatus(s string) bool {
	return s == store.TaskStatusTodo || s == store.TaskStatusInProgress || s == store.TaskStatusCompleted
}

func validPriority(p string) bool {
	return p == store.TaskPriorityLow || p == store.TaskPriorityMedium || p == store.TaskPriorityHigh
}

func (s *Server) handleTasksList(w http.ResponseWriter, r *http.Request) {
	principal := s.principal(r)
	if principal == nil {
		unauthorized(w)
		return
	}

	projectID := r.URL.Query().Get("project_id")
	tasks, err := s.store.ListTasks(r.Context(), principal.ID, projectID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	writeJSON(w, http.StatusOK, map[string][]taskResponse{"tasks": out})
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	principal := s.principal(r)
	if principal == nil {
		unauthorized(w)
		return
	}

	var req taskCreateRequest
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
	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "project_id is required")
		return
	}
	if req.Status == "" {
		req.Status = store.TaskStatusTodo
	}
	if !validStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "status must be one of: todo, in-progress, completed")
		return
	}
	if req.Priority == "" {
		req.Priority = store.TaskPriorityMedium
	}
	if !validPriority(req.Priority) {
		writeError(w, http.StatusBadRequest, "priority must be one of: low, medium, high")
		return
	}
	if req.EstimatedHours != nil && *req.EstimatedHours <= 0 {
		writeError(w, http.StatusBadRequest, "estimated_hours must be positive")
		return
	}

	// The guard's creation inversion: the referenced parent project must
	// exist and be owned by the creating principal before anything is
	// persisted.
	if err := s.guard.Project(r.Context(), principal.ID, req.ProjectID); err != nil {
		s.respondError(w, err)
		return
	}

	now := time.Now().UTC()
	task := &store.Task{
		ID:             uuid.New().String(),
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		EstimatedHours: req.EstimatedHours,
		CreatedBy:      principal.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateTask(r.Context(), task); err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]taskResponse{"task": toTaskResponse(task)})
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	principal := s.principal(r)
	if principal == nil {
		unauthorized(w)
		return
	}

	id := r.PathValue("id")
	if err := s.guard.Task(r.Context(), principal.ID, id); err != nil {
		s.respondError(w, err)
		return
	}

	var req taskUpdateRequest
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
	if req.Status != nil && !validStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "status must be one of: todo, in-progress, completed")
		return
	}
	if req.Priority != nil && !validPriority(*req.Priority) {
		writeError(w, http.StatusBadRequest, "priority must be one of: low, medium, high")
		return
	}
	if req.EstimatedHours != nil && *req.EstimatedHours <= 0 {
		writeError(w, http.StatusBadRequest, "estimated_hours must be positive")
		return
	}

	update := store.TaskUpdate{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		EstimatedHours: req.EstimatedHours,
	}
	if update.Empty() {
		writeError(w, http.StatusBadRequest, "no updates provided")
		return
	}

	task, err := s.store.UpdateTask(r.Context(), id, update)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]taskResponse{"task": toTaskResponse(task)})
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	principal := s.principal(r)
	if principal == nil {
		unauthorized(w)
		return
	}

	id := r.PathValue("id")
	if err := s.guard.Task(r.Context(), principal.ID, id); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.store.DeleteTask(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
