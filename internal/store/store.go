// ABOUTME: Store interface and data types for taskdeck persistence
// ABOUTME: Defines User, Project, Task structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when trying to create a user with an email
// that is already registered
var ErrEmailExists = errors.New("email already registered")

// User represents a registered account. PasswordHash is a bcrypt hash and
// never leaves the store layer.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Project represents a project owned by a single user.
// CreatedBy is set exactly once at creation time and is never updated.
type Project struct {
	ID          string
	Title       string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Task status constants
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
)

// Task priority constants
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task represents a task within a project. A task's project is always owned
// by the same user as the task itself; this is enforced at creation time
// through the project ownership check, not re-validated afterward.
type Task struct {
	ID             string
	ProjectID      string
	Title          string
	Description    string
	Status         string // "todo", "in-progress", "completed"
	Priority       string // "low", "medium", "high"
	EstimatedHours *float64
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProjectUpdate holds the mutable fields of a project. Nil fields are left
// unchanged. The owner column is deliberately absent from this struct:
// updates cannot touch created_by no matter what a caller passes in.
type ProjectUpdate struct {
	Title       *string
	Description *string
}

// Empty reports whether the update would change nothing.
func (u ProjectUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil
}

// TaskUpdate holds the mutable fields of a task. Nil fields are left
// unchanged. As with ProjectUpdate, created_by and project_id are not
// representable here.
type TaskUpdate struct {
	Title          *string
	Description    *string
	Status         *string
	Priority       *string
	EstimatedHours *float64
}

// Empty reports whether the update would change nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil &&
		u.Priority == nil && u.EstimatedHours == nil
}

// Store defines the interface for user, project, and task persistence
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// Projects
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context, ownerID string) ([]*Project, error)
	UpdateProject(ctx context.Context, id string, update ProjectUpdate) (*Project, error)
	DeleteProject(ctx context.Context, id string) error

	// Tasks
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	ListTasks(ctx context.Context, ownerID, projectID string) ([]*Task, error)
	UpdateTask(ctx context.Context, id string, update TaskUpdate) (*Task, error)
	DeleteTask(ctx context.Context, id string) error

	// Ownership lookups (single-column point queries used by the guard)
	ProjectOwner(ctx context.Context, id string) (string, error)
	TaskOwner(ctx context.Context, id string) (string, error)

	// Close releases any resources held by the store
	Close() error
}
