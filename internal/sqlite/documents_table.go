package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// Compile-time interface check: documentsTable must implement Table.
var _ types.Table = (*documentsTable)(nil)

const documentColumns = "id, project_id, title, file_path, file_type, version, created_at, updated_at, created_by"

// documentsTable implements the Table interface for the documents entity type.
type documentsTable struct {
	s *session
}

func scanDocument(row rowScanner) (*types.Document, error) {
	var (
		d                types.Document
		created, updated timeValue
	)
	if err := row.Scan(&d.ID, &d.ProjectID, &d.Title, &d.FilePath, &d.FileType, &d.Version, &created, &updated, &d.CreatedBy); err != nil {
		return nil, err
	}
	d.CreatedAt = created.Time
	d.UpdatedAt = updated.Time
	return &d, nil
}

func getDocument(q querier, id int64) (*types.Document, error) {
	if id <= 0 {
		return nil, types.ErrNotFound
	}
	d, err := scanDocument(q.QueryRow("SELECT "+documentColumns+" FROM documents WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("document %d", id))
	}
	return d, nil
}

func listDocuments(q querier, offset, limit int) ([]*types.Document, error) {
	return queryAll(q, scanDocument, "SELECT "+documentColumns+" FROM documents ORDER BY id LIMIT ? OFFSET ?", pageArgs(offset, limit)...)
}

func insertDocument(q querier, d *types.Document) (int64, error) {
	res, err := q.Exec(
		"INSERT INTO documents ("+documentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		newIDArg(d.ID), d.ProjectID, d.Title, d.FilePath, d.FileType, d.Version,
		formatTime(d.CreatedAt), formatTime(d.UpdatedAt), d.CreatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting document: %w", err)
	}
	return res.LastInsertId()
}

func checkDocument(q querier, d *types.Document) error {
	if err := requireRow(q, types.ProjectsTable, "project_id", d.ProjectID); err != nil {
		return err
	}
	return requireRow(q, types.UsersTable, "created_by", d.CreatedBy)
}

// Create validates the document, checks its project and creator, and inserts it.
func (dt *documentsTable) Create(data any) (int64, error) {
	d, ok := data.(*types.Document)
	if !ok {
		return 0, dt.s.fail(types.ErrInvalidData)
	}
	rec := *d
	rec.ID = 0
	err := dt.s.write(func(tx *sql.Tx, now time.Time) error {
		if err := rec.Validate(); err != nil {
			return err
		}
		if err := checkDocument(tx, &rec); err != nil {
			return err
		}
		rec.CreatedAt, rec.UpdatedAt = now, now
		id, err := insertDocument(tx, &rec)
		if err != nil {
			return err
		}
		rec.ID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	*d = rec
	return rec.ID, nil
}

// Get retrieves a document by ID.
func (dt *documentsTable) Get(id int64) (any, error) {
	var d *types.Document
	err := dt.s.read(func(q querier) error {
		var err error
		d, err = getDocument(q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// List returns documents in ascending ID order.
func (dt *documentsTable) List(offset, limit int) ([]any, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}
	if limit == 0 {
		return []any{}, nil
	}
	var docs []*types.Document
	err := dt.s.read(func(q querier) error {
		var err error
		docs, err = listDocuments(q, offset, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toAny(docs), nil
}

// Update applies a *types.DocumentPatch. Moving a document re-checks the
// target project.
func (dt *documentsTable) Update(id int64, patch any) (any, error) {
	p, ok := patch.(*types.DocumentPatch)
	if !ok {
		return nil, dt.s.fail(types.ErrInvalidData)
	}
	var out *types.Document
	err := dt.s.write(func(tx *sql.Tx, now time.Time) error {
		d, err := getDocument(tx, id)
		if err != nil {
			return err
		}
		p.ApplyTo(d)
		if err := d.Validate(); err != nil {
			return err
		}
		if err := checkDocument(tx, d); err != nil {
			return err
		}
		d.UpdatedAt = now
		_, err = tx.Exec(
			"UPDATE documents SET project_id = ?, title = ?, file_path = ?, file_type = ?, version = ?, updated_at = ? WHERE id = ?",
			d.ProjectID, d.Title, d.FilePath, d.FileType, d.Version, formatTime(d.UpdatedAt), id,
		)
		if err != nil {
			return fmt.Errorf("updating document %d: %w", id, err)
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a document under the configured delete policy.
func (dt *documentsTable) Delete(id int64) error {
	return dt.s.write(func(tx *sql.Tx, now time.Time) error {
		if id <= 0 {
			return types.ErrNotFound
		}
		return deleteRow(tx, dt.s.backend.log, dt.s.backend.deletePolicy(), types.DocumentsTable, id, now)
	})
}
