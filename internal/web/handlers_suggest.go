// ABOUTME: AI suggestion and analysis endpoints gated behind verifier and ownership guard
// ABOUTME: Upstream failures surface as generic service errors, never as authorization outcomes

package web

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/yuin/goldmark"
)

type suggestRequest struct {
	ProjectID string `json:"project_id"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	principal := s.principal(r)
	if principal == nil {
		unauthorized(w)
		return
	}

	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "project_id is required")
		return
	}

	if err := s.guard.Project(r.Context(), principal.ID, req.ProjectID); err != nil {
		s.respondError(w, err)
		return
	}

	if s.generator == nil {
		writeError(w, http.StatusServiceUnavailable, "suggestions are not enabled")
		return
	}

	project, err := s.store.GetProject(r.Context(), req.ProjectID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	suggestions, err := s.generator.TaskSuggestions(r.Context(), project.Title, project.Description)
	if err != nil {
		s.logger.Error("generating suggestions failed", "error", err, "project", project.ID)
		writeError(w, http.StatusBadGateway, "failed to generate suggestions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	principal := s.principal(r)
	if principal == nil {
		unauthorized(w)
		return
	}

	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "project_id is required")
		return
	}

	if err := s.guard.Project(r.Context(), principal.ID, req.ProjectID); err != nil {
		s.respondError(w, err)
		return
	}

	if s.generator == nil {
		writeError(w, http.StatusServiceUnavailable, "analysis is not enabled")
		return
	}

	project, err := s.store.GetProject(r.Context(), req.ProjectID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	tasks, err := s.store.ListTasks(r.Context(), principal.ID, project.ID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	analysis, err := s.generator.Analyze(r.Context(), project.Title, tasks)
	if err != nil {
		s.logger.Error("project analysis failed", "error", err, "project", project.ID)
		writeError(w, http.StatusBadGateway, "failed to analyze project")
		return
	}

	// The dashboard renders the analysis as HTML; the raw markdown is
	// returned alongside for API consumers.
	var htmlBuf bytes.Buffer
	if err := goldmark.Convert([]byte(analysis), &htmlBuf); err != nil {
		s.logger.Warn("rendering analysis markdown failed", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"analysis":      analysis,
		"analysis_html": htmlBuf.String(),
	})
}
