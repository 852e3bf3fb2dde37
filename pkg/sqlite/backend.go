// Package sqlite provides the public API for the SQLite record store.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/pmstore/internal/sqlite"
	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// Option configures a backend created by NewBackend.
type Option = sqlite.Option

// WithHasher sets the password hasher used for user credentials.
func WithHasher(h types.Hasher) Option { return sqlite.WithHasher(h) }

// NewBackend creates a new SQLite backend instance.
// The backend is not open; call Open with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/var/lib/pmstore",
//	})
//	defer store.Close()
func NewBackend(opts ...Option) types.Store {
	return sqlite.NewBackend(opts...)
}
