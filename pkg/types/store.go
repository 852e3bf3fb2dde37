package types

import "errors"

// Tables gives access to tables by name.
type Tables interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)
}

// Store defines the interface for backend-agnostic record storage.
// Callers open a store at process start, access tables by name, and close it
// at shutdown.
type Store interface {
	Tables

	// Open connects the Store to the backend described by config and creates
	// the schema if needed. Returns ErrAlreadyOpen if the store is open.
	Open(config Config) error

	// Close releases backend resources. Idempotent: multiple calls succeed.
	// After Close, table operations return ErrStoreClosed.
	Close() error

	// Batch runs fn with tables bound to a single transaction. Every write
	// made through tx commits together when fn returns nil; if fn returns an
	// error, or any operation fails, nothing is kept. Tables obtained from
	// tx must not be used after fn returns.
	Batch(fn func(tx Tables) error) error
}

// Store lifecycle errors.
var (
	ErrStoreClosed   = errors.New("store is closed")
	ErrAlreadyOpen   = errors.New("store is already open")
	ErrTableNotFound = errors.New("table not found")
	ErrStoreNotEmpty = errors.New("store is not empty")
)
