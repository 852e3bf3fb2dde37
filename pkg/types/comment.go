package types

import "time"

// Comment is a note attached to exactly one task or one document.
type Comment struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content" validate:"required"`
	TaskID     *int64    `json:"task_id"`
	DocumentID *int64    `json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	CreatedBy  int64     `json:"created_by" validate:"required"`
}

// Validate checks required fields. The task/document exclusive-or rule is an
// integrity check and is enforced by the store with ErrInvalidReference.
func (c *Comment) Validate() error {
	return validateStruct(c)
}

// CommentPatch names the mutable comment fields. Moving a comment from a task
// to a document requires clearing task_id in the same patch.
type CommentPatch struct {
	Content    *string         `json:"content"`
	TaskID     Nullable[int64] `json:"task_id"`
	DocumentID Nullable[int64] `json:"document_id"`
}

// ApplyTo merges the patch into c.
func (p *CommentPatch) ApplyTo(c *Comment) {
	if p.Content != nil {
		c.Content = *p.Content
	}
	p.TaskID.Apply(&c.TaskID)
	p.DocumentID.Apply(&c.DocumentID)
}
