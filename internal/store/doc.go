// Package store provides persistent storage for taskdeck using SQLite.
//
// # Data Models
//
//   - User: Registered account with bcrypt password hash
//   - Project: A project owned by exactly one user (created_by)
//   - Task: A task inside a project, carrying status, priority, and an
//     optional hour estimate
//
// Ownership is recorded in the created_by column, set once at insert time.
// Updates go through ProjectUpdate/TaskUpdate structs that only contain the
// mutable domain fields, so an update can never change a row's owner.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Deleting a project cascades to its tasks.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//   - ErrEmailExists: Registration with an already-used email
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewMockStore() for unit tests:
//
//	store := store.NewMockStore()
//
// Use NewSQLiteStore with a temp file for integration tests with real SQLite.
package store
