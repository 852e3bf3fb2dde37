package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// reference is a foreign-key column that points at a parent table.
type reference struct {
	table    string // child table holding the column
	column   string
	nullable bool // cleared instead of deleted on cascade
}

// referencedBy maps each table to the columns that point at its rows.
var referencedBy = map[string][]reference{
	types.UsersTable: {
		{table: types.ProjectsTable, column: "created_by"},
		{table: types.TasksTable, column: "created_by"},
		{table: types.TasksTable, column: "assigned_to", nullable: true},
		{table: types.DocumentsTable, column: "created_by"},
		{table: types.CommentsTable, column: "created_by"},
	},
	types.ProjectsTable: {
		{table: types.TasksTable, column: "project_id"},
		{table: types.DocumentsTable, column: "project_id"},
	},
	types.TasksTable: {
		{table: types.CommentsTable, column: "task_id"},
	},
	types.DocumentsTable: {
		{table: types.CommentsTable, column: "document_id"},
	},
}

// rowExists reports whether table has a row with id.
func rowExists(q querier, table string, id int64) (bool, error) {
	var one int
	err := q.QueryRow("SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s %d: %w", table, id, err)
	}
	return true, nil
}

// requireRow fails with ErrDanglingReference when column references an id
// missing from table.
func requireRow(q querier, table, column string, id int64) error {
	ok, err := rowExists(q, table, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s=%d does not exist in %s", types.ErrDanglingReference, column, id, table)
	}
	return nil
}

// requireOptionalRow is requireRow for a nullable column.
func requireOptionalRow(q querier, table, column string, id *int64) error {
	if id == nil {
		return nil
	}
	return requireRow(q, table, column, *id)
}

// checkCommentTarget enforces that a comment names exactly one target.
func checkCommentTarget(c *types.Comment) error {
	if (c.TaskID == nil) == (c.DocumentID == nil) {
		return types.ErrInvalidReference
	}
	return nil
}

// requireUnique fails with ErrValidation when another row of table already
// holds value in column. selfID is excluded so updates can keep their value.
func requireUnique(q querier, table, column, value string, selfID int64) error {
	var id int64
	err := q.QueryRow("SELECT id FROM "+table+" WHERE "+column+" = ? AND id != ?", value, selfID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking unique %s.%s: %w", table, column, err)
	}
	return fmt.Errorf("%w: %s %q is already taken", types.ErrValidation, column, value)
}

// deleteRow removes table row id under policy. Under DeleteRestrict any
// reference refuses the delete with ErrReferenced. Under DeleteCascade rows
// holding required references are deleted recursively and nullable
// references are cleared.
func deleteRow(tx *sql.Tx, log *logrus.Logger, policy, table string, id int64, now time.Time) error {
	ok, err := rowExists(tx, table, id)
	if err != nil {
		return err
	}
	if !ok {
		return types.ErrNotFound
	}

	if policy == types.DeleteCascade {
		if err := cascade(tx, log, table, id, now); err != nil {
			return err
		}
	} else if err := restrict(tx, table, id); err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM "+table+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting %s %d: %w", table, id, err)
	}
	return nil
}

// restrict fails with ErrReferenced naming the first column that still
// points at table row id.
func restrict(q querier, table string, id int64) error {
	for _, ref := range referencedBy[table] {
		n, err := countRefs(q, ref, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s %d is referenced by %d %s.%s", types.ErrReferenced, table, id, n, ref.table, ref.column)
		}
	}
	return nil
}

// cascade removes or clears every row that points at table row id. Cleared
// rows get a fresh updated_at.
func cascade(tx *sql.Tx, log *logrus.Logger, table string, id int64, now time.Time) error {
	for _, ref := range referencedBy[table] {
		if ref.nullable {
			res, err := tx.Exec(
				"UPDATE "+ref.table+" SET "+ref.column+" = NULL, updated_at = ? WHERE "+ref.column+" = ?",
				formatTime(now), id,
			)
			if err != nil {
				return fmt.Errorf("clearing %s.%s: %w", ref.table, ref.column, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				log.WithFields(logrus.Fields{
					"table":  ref.table,
					"column": ref.column,
					"target": id,
					"rows":   n,
				}).Info("cleared references")
			}
			continue
		}

		children, err := referringIDs(tx, ref, id)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := cascade(tx, log, ref.table, child, now); err != nil {
				return err
			}
			if _, err := tx.Exec("DELETE FROM "+ref.table+" WHERE id = ?", child); err != nil {
				return fmt.Errorf("deleting %s %d: %w", ref.table, child, err)
			}
		}
		if len(children) > 0 {
			log.WithFields(logrus.Fields{
				"table":  ref.table,
				"column": ref.column,
				"target": id,
				"rows":   len(children),
			}).Info("cascaded delete")
		}
	}
	return nil
}

func countRefs(q querier, ref reference, id int64) (int, error) {
	var n int
	err := q.QueryRow("SELECT COUNT(*) FROM "+ref.table+" WHERE "+ref.column+" = ?", id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s.%s: %w", ref.table, ref.column, err)
	}
	return n, nil
}

func referringIDs(q querier, ref reference, id int64) ([]int64, error) {
	rows, err := q.Query("SELECT id FROM "+ref.table+" WHERE "+ref.column+" = ? ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("finding %s.%s: %w", ref.table, ref.column, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var child int64
		if err := rows.Scan(&child); err != nil {
			return nil, fmt.Errorf("scanning %s id: %w", ref.table, err)
		}
		ids = append(ids, child)
	}
	return ids, rows.Err()
}
