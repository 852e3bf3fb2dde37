package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// Compile-time interface check: commentsTable must implement Table.
var _ types.Table = (*commentsTable)(nil)

const commentColumns = "id, content, task_id, document_id, created_at, updated_at, created_by"

// commentsTable implements the Table interface for the comments entity type.
// A comment belongs to exactly one task or one document.
type commentsTable struct {
	s *session
}

func scanComment(row rowScanner) (*types.Comment, error) {
	var (
		c                types.Comment
		task, doc        sql.NullInt64
		created, updated timeValue
	)
	if err := row.Scan(&c.ID, &c.Content, &task, &doc, &created, &updated, &c.CreatedBy); err != nil {
		return nil, err
	}
	c.TaskID = idPtr(task)
	c.DocumentID = idPtr(doc)
	c.CreatedAt = created.Time
	c.UpdatedAt = updated.Time
	return &c, nil
}

func getComment(q querier, id int64) (*types.Comment, error) {
	if id <= 0 {
		return nil, types.ErrNotFound
	}
	c, err := scanComment(q.QueryRow("SELECT "+commentColumns+" FROM comments WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("comment %d", id))
	}
	return c, nil
}

func listComments(q querier, offset, limit int) ([]*types.Comment, error) {
	return queryAll(q, scanComment, "SELECT "+commentColumns+" FROM comments ORDER BY id LIMIT ? OFFSET ?", pageArgs(offset, limit)...)
}

func insertComment(q querier, c *types.Comment) (int64, error) {
	res, err := q.Exec(
		"INSERT INTO comments ("+commentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		newIDArg(c.ID), c.Content, idArg(c.TaskID), idArg(c.DocumentID),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt), c.CreatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting comment: %w", err)
	}
	return res.LastInsertId()
}

// checkComment enforces the single-target rule before checking that the
// target and creator exist.
func checkComment(q querier, c *types.Comment) error {
	if err := checkCommentTarget(c); err != nil {
		return err
	}
	if err := requireOptionalRow(q, types.TasksTable, "task_id", c.TaskID); err != nil {
		return err
	}
	if err := requireOptionalRow(q, types.DocumentsTable, "document_id", c.DocumentID); err != nil {
		return err
	}
	return requireRow(q, types.UsersTable, "created_by", c.CreatedBy)
}

// Create validates the comment, checks its target and creator, and inserts it.
func (ct *commentsTable) Create(data any) (int64, error) {
	c, ok := data.(*types.Comment)
	if !ok {
		return 0, ct.s.fail(types.ErrInvalidData)
	}
	rec := *c
	rec.ID = 0
	err := ct.s.write(func(tx *sql.Tx, now time.Time) error {
		if err := rec.Validate(); err != nil {
			return err
		}
		if err := checkComment(tx, &rec); err != nil {
			return err
		}
		rec.CreatedAt, rec.UpdatedAt = now, now
		id, err := insertComment(tx, &rec)
		if err != nil {
			return err
		}
		rec.ID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	*c = rec
	return rec.ID, nil
}

// Get retrieves a comment by ID.
func (ct *commentsTable) Get(id int64) (any, error) {
	var c *types.Comment
	err := ct.s.read(func(q querier) error {
		var err error
		c, err = getComment(q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns comments in ascending ID order.
func (ct *commentsTable) List(offset, limit int) ([]any, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}
	if limit == 0 {
		return []any{}, nil
	}
	var comments []*types.Comment
	err := ct.s.read(func(q querier) error {
		var err error
		comments, err = listComments(q, offset, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toAny(comments), nil
}

// Update applies a *types.CommentPatch. The merged comment must still name
// exactly one target.
func (ct *commentsTable) Update(id int64, patch any) (any, error) {
	p, ok := patch.(*types.CommentPatch)
	if !ok {
		return nil, ct.s.fail(types.ErrInvalidData)
	}
	var out *types.Comment
	err := ct.s.write(func(tx *sql.Tx, now time.Time) error {
		c, err := getComment(tx, id)
		if err != nil {
			return err
		}
		p.ApplyTo(c)
		if err := c.Validate(); err != nil {
			return err
		}
		if err := checkComment(tx, c); err != nil {
			return err
		}
		c.UpdatedAt = now
		_, err = tx.Exec(
			"UPDATE comments SET content = ?, task_id = ?, document_id = ?, updated_at = ? WHERE id = ?",
			c.Content, idArg(c.TaskID), idArg(c.DocumentID), formatTime(c.UpdatedAt), id,
		)
		if err != nil {
			return fmt.Errorf("updating comment %d: %w", id, err)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a comment. Nothing references comments, so the delete
// policy never applies.
func (ct *commentsTable) Delete(id int64) error {
	return ct.s.write(func(tx *sql.Tx, now time.Time) error {
		if id <= 0 {
			return types.ErrNotFound
		}
		return deleteRow(tx, ct.s.backend.log, ct.s.backend.deletePolicy(), types.CommentsTable, id, now)
	})
}
