// ABOUTME: Template rendering functions for the dashboard pages
// ABOUTME: Loads templates from the embedded filesystem and renders them

package web

import (
	"html/template"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/store"
)

// Template data types
type pageData struct {
	Title string
}

type dashboardData struct {
	Title     string
	Principal *auth.Principal
	Projects  []*store.Project
}

type projectPageData struct {
	Title     string
	Principal *auth.Principal
	Project   *store.Project
	Tasks     []*store.Task
}

func (s *Server) render(w http.ResponseWriter, page string, data any) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/"+page))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", "page", page, "error", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", pageData{Title: "taskdeck"})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", pageData{Title: "Login"})
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "register.html", pageData{Title: "Create Account"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	// The edge gate keeps unauthenticated requests out of this handler,
	// but the principal is re-derived here regardless: the gate is a
	// coarse path check, not the authorization layer.
	principal := s.principal(r)
	if principal == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	projects, err := s.store.ListProjects(r.Context(), principal.ID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.render(w, "dashboard.html", dashboardData{
		Title:     "Dashboard",
		Principal: principal,
		Projects:  projects,
	})
}

func (s *Server) handleProjectPage(w http.ResponseWriter, r *http.Request) {
	principal := s.principal(r)
	if principal == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
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

	tasks, err := s.store.ListTasks(r.Context(), principal.ID, id)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.render(w, "project.html", projectPageData{
		Title:     project.Title,
		Principal: principal,
		Project:   project,
		Tasks:     tasks,
	})
}
