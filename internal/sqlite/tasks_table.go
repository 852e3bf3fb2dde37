package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// Compile-time interface check: tasksTable must implement Table.
var _ types.Table = (*tasksTable)(nil)

const taskColumns = "id, project_id, title, description, status, priority, due_date, assigned_to, created_at, updated_at, created_by"

// tasksTable implements the Table interface for the tasks entity type.
type tasksTable struct {
	s *session
}

func scanTask(row rowScanner) (*types.Task, error) {
	var (
		t                types.Task
		description      sql.NullString
		due              dateValue
		assignee         sql.NullInt64
		created, updated timeValue
	)
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &description, &t.Status, &t.Priority,
		&due, &assignee, &created, &updated, &t.CreatedBy); err != nil {
		return nil, err
	}
	t.Description = description.String
	t.DueDate = due.ptr()
	t.AssignedTo = idPtr(assignee)
	t.CreatedAt = created.Time
	t.UpdatedAt = updated.Time
	return &t, nil
}

func getTask(q querier, id int64) (*types.Task, error) {
	if id <= 0 {
		return nil, types.ErrNotFound
	}
	t, err := scanTask(q.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("task %d", id))
	}
	return t, nil
}

func listTasks(q querier, offset, limit int) ([]*types.Task, error) {
	return queryAll(q, scanTask, "SELECT "+taskColumns+" FROM tasks ORDER BY id LIMIT ? OFFSET ?", pageArgs(offset, limit)...)
}

func insertTask(q querier, t *types.Task) (int64, error) {
	res, err := q.Exec(
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		newIDArg(t.ID), t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
		dateArg(t.DueDate), idArg(t.AssignedTo), formatTime(t.CreatedAt), formatTime(t.UpdatedAt), t.CreatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting task: %w", err)
	}
	return res.LastInsertId()
}

func checkTask(q querier, t *types.Task) error {
	if err := requireRow(q, types.ProjectsTable, "project_id", t.ProjectID); err != nil {
		return err
	}
	if err := requireOptionalRow(q, types.UsersTable, "assigned_to", t.AssignedTo); err != nil {
		return err
	}
	return requireRow(q, types.UsersTable, "created_by", t.CreatedBy)
}

// Create validates the task, checks its project, assignee, and creator, and
// inserts it.
func (tt *tasksTable) Create(data any) (int64, error) {
	t, ok := data.(*types.Task)
	if !ok {
		return 0, tt.s.fail(types.ErrInvalidData)
	}
	rec := *t
	rec.ID = 0
	err := tt.s.write(func(tx *sql.Tx, now time.Time) error {
		if err := rec.Validate(); err != nil {
			return err
		}
		if err := checkTask(tx, &rec); err != nil {
			return err
		}
		rec.CreatedAt, rec.UpdatedAt = now, now
		id, err := insertTask(tx, &rec)
		if err != nil {
			return err
		}
		rec.ID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	*t = rec
	return rec.ID, nil
}

// Get retrieves a task by ID.
func (tt *tasksTable) Get(id int64) (any, error) {
	var t *types.Task
	err := tt.s.read(func(q querier) error {
		var err error
		t, err = getTask(q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns tasks in ascending ID order.
func (tt *tasksTable) List(offset, limit int) ([]any, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}
	if limit == 0 {
		return []any{}, nil
	}
	var tasks []*types.Task
	err := tt.s.read(func(q querier) error {
		var err error
		tasks, err = listTasks(q, offset, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toAny(tasks), nil
}

// Update applies a *types.TaskPatch and re-checks every reference.
func (tt *tasksTable) Update(id int64, patch any) (any, error) {
	p, ok := patch.(*types.TaskPatch)
	if !ok {
		return nil, tt.s.fail(types.ErrInvalidData)
	}
	var out *types.Task
	err := tt.s.write(func(tx *sql.Tx, now time.Time) error {
		t, err := getTask(tx, id)
		if err != nil {
			return err
		}
		p.ApplyTo(t)
		if err := t.Validate(); err != nil {
			return err
		}
		if err := checkTask(tx, t); err != nil {
			return err
		}
		t.UpdatedAt = now
		_, err = tx.Exec(
			"UPDATE tasks SET project_id = ?, title = ?, description = ?, status = ?, priority = ?, due_date = ?, assigned_to = ?, updated_at = ? WHERE id = ?",
			t.ProjectID, t.Title, t.Description, t.Status, t.Priority, dateArg(t.DueDate), idArg(t.AssignedTo), formatTime(t.UpdatedAt), id,
		)
		if err != nil {
			return fmt.Errorf("updating task %d: %w", id, err)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a task under the configured delete policy.
func (tt *tasksTable) Delete(id int64) error {
	return tt.s.write(func(tx *sql.Tx, now time.Time) error {
		if id <= 0 {
			return types.ErrNotFound
		}
		return deleteRow(tx, tt.s.backend.log, tt.s.backend.deletePolicy(), types.TasksTable, id, now)
	})
}
