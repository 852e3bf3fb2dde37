package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// Compile-time interface check: projectsTable must implement Table.
var _ types.Table = (*projectsTable)(nil)

const projectColumns = "id, name, description, start_date, end_date, status, created_at, updated_at, created_by"

// projectsTable implements the Table interface for the projects entity type.
type projectsTable struct {
	s *session
}

func scanProject(row rowScanner) (*types.Project, error) {
	var (
		p                types.Project
		description      sql.NullString
		start, end       dateValue
		created, updated timeValue
	)
	if err := row.Scan(&p.ID, &p.Name, &description, &start, &end, &p.Status, &created, &updated, &p.CreatedBy); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.StartDate = start.date
	p.EndDate = end.ptr()
	p.CreatedAt = created.Time
	p.UpdatedAt = updated.Time
	return &p, nil
}

func getProject(q querier, id int64) (*types.Project, error) {
	if id <= 0 {
		return nil, types.ErrNotFound
	}
	p, err := scanProject(q.QueryRow("SELECT "+projectColumns+" FROM projects WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("project %d", id))
	}
	return p, nil
}

func listProjects(q querier, offset, limit int) ([]*types.Project, error) {
	return queryAll(q, scanProject, "SELECT "+projectColumns+" FROM projects ORDER BY id LIMIT ? OFFSET ?", pageArgs(offset, limit)...)
}

func insertProject(q querier, p *types.Project) (int64, error) {
	res, err := q.Exec(
		"INSERT INTO projects ("+projectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		newIDArg(p.ID), p.Name, p.Description, p.StartDate.String(), dateArg(p.EndDate), p.Status,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt), p.CreatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting project: %w", err)
	}
	return res.LastInsertId()
}

func checkProject(q querier, p *types.Project) error {
	return requireRow(q, types.UsersTable, "created_by", p.CreatedBy)
}

// Create validates the project, checks its creator, and inserts it.
func (pt *projectsTable) Create(data any) (int64, error) {
	p, ok := data.(*types.Project)
	if !ok {
		return 0, pt.s.fail(types.ErrInvalidData)
	}
	rec := *p
	rec.ID = 0
	err := pt.s.write(func(tx *sql.Tx, now time.Time) error {
		if err := rec.Validate(); err != nil {
			return err
		}
		if err := checkProject(tx, &rec); err != nil {
			return err
		}
		rec.CreatedAt, rec.UpdatedAt = now, now
		id, err := insertProject(tx, &rec)
		if err != nil {
			return err
		}
		rec.ID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	*p = rec
	return rec.ID, nil
}

// Get retrieves a project by ID.
func (pt *projectsTable) Get(id int64) (any, error) {
	var p *types.Project
	err := pt.s.read(func(q querier) error {
		var err error
		p, err = getProject(q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns projects in ascending ID order.
func (pt *projectsTable) List(offset, limit int) ([]any, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}
	if limit == 0 {
		return []any{}, nil
	}
	var projects []*types.Project
	err := pt.s.read(func(q querier) error {
		var err error
		projects, err = listProjects(q, offset, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toAny(projects), nil
}

// Update applies a *types.ProjectPatch.
func (pt *projectsTable) Update(id int64, patch any) (any, error) {
	pp, ok := patch.(*types.ProjectPatch)
	if !ok {
		return nil, pt.s.fail(types.ErrInvalidData)
	}
	var out *types.Project
	err := pt.s.write(func(tx *sql.Tx, now time.Time) error {
		p, err := getProject(tx, id)
		if err != nil {
			return err
		}
		pp.ApplyTo(p)
		if err := p.Validate(); err != nil {
			return err
		}
		p.UpdatedAt = now
		_, err = tx.Exec(
			"UPDATE projects SET name = ?, description = ?, start_date = ?, end_date = ?, status = ?, updated_at = ? WHERE id = ?",
			p.Name, p.Description, p.StartDate.String(), dateArg(p.EndDate), p.Status, formatTime(p.UpdatedAt), id,
		)
		if err != nil {
			return fmt.Errorf("updating project %d: %w", id, err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a project under the configured delete policy.
func (pt *projectsTable) Delete(id int64) error {
	return pt.s.write(func(tx *sql.Tx, now time.Time) error {
		if id <= 0 {
			return types.ErrNotFound
		}
		return deleteRow(tx, pt.s.backend.log, pt.s.backend.deletePolicy(), types.ProjectsTable, id, now)
	})
}
