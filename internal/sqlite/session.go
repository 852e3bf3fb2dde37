package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// session routes table operations either through a fresh transaction per
// call (tx == nil) or through the enclosing Batch transaction, where the
// backend lock is already held.
type session struct {
	backend *Backend
	tx      *sql.Tx
	err     error // first failed operation inside a batch
}

// GetTable implements types.Tables for Batch callbacks.
func (s *session) GetTable(name string) (types.Table, error) {
	t := s.table(name)
	if t == nil {
		return nil, types.ErrTableNotFound
	}
	return t, nil
}

// table returns the accessor for name bound to this session, or nil.
func (s *session) table(name string) types.Table {
	switch name {
	case types.UsersTable:
		return &usersTable{s: s}
	case types.ProjectsTable:
		return &projectsTable{s: s}
	case types.TasksTable:
		return &tasksTable{s: s}
	case types.DocumentsTable:
		return &documentsTable{s: s}
	case types.CommentsTable:
		return &commentsTable{s: s}
	default:
		return nil
	}
}

// read runs fn under the read lock, or inside the batch transaction.
func (s *session) read(fn func(q querier) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	b := s.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.open {
		return types.ErrStoreClosed
	}
	return fn(b.db)
}

// write runs fn in a transaction under the write lock, committing when fn
// succeeds. Inside a batch it reuses the batch transaction and leaves the
// commit to Batch.
func (s *session) write(fn func(tx *sql.Tx, now time.Time) error) error {
	b := s.backend
	if s.tx != nil {
		return s.record(fn(s.tx, b.now().UTC()))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return types.ErrStoreClosed
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx, b.now().UTC()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// record keeps the first failed write inside a batch so Batch can refuse to
// commit. Failed reads are not recorded.
func (s *session) record(err error) error {
	if err != nil && s.err == nil {
		s.err = err
	}
	return err
}

// fail returns err, recording it first when the session belongs to a batch.
func (s *session) fail(err error) error {
	if s.tx == nil {
		return err
	}
	return s.record(err)
}
