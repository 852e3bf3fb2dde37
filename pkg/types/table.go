package types

import (
	"errors"
	"fmt"
)

// Table provides uniform CRUD operations for a single entity type.
// Get, List, and Update return any; callers type-assert to the concrete
// entity pointer (*User, *Project, *Task, *Document, *Comment).
type Table interface {
	// Create validates data, checks its references, and inserts it with the
	// next unused identifier. data must be the table's entity pointer; ID,
	// CreatedAt, and UpdatedAt are written back into it. Returns the new ID.
	Create(data any) (int64, error)

	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id int64) (any, error)

	// List returns up to limit entities in ascending ID order, skipping the
	// first offset. A limit of zero returns an empty slice.
	List(offset, limit int) ([]any, error)

	// Update merges patch into the stored entity and refreshes UpdatedAt.
	// patch must be the table's patch pointer (*UserPatch, ...).
	// Returns ErrNotFound if no entity exists with that ID.
	Update(id int64, patch any) (any, error)

	// Delete removes the entity with the given ID, subject to the store's
	// delete policy. Returns ErrNotFound if no entity exists with that ID.
	Delete(id int64) error
}

// Table operation errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidData = errors.New("invalid entity data")
)

// Integrity errors.
var (
	// ErrValidation reports a malformed or missing field, or a unique
	// constraint violation.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownField reports a JSON field that the entity or patch does not
	// declare. It wraps ErrValidation.
	ErrUnknownField = fmt.Errorf("%w: unknown field", ErrValidation)

	// ErrDanglingReference reports a foreign key that points to a missing row.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrInvalidReference reports a comment that is linked to both a task and
	// a document, or to neither.
	ErrInvalidReference = errors.New("comment must reference exactly one of task or document")

	// ErrReferenced reports a delete refused because other rows still
	// reference the target under the restrict policy.
	ErrReferenced = errors.New("entity is still referenced")
)
