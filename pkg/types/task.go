package types

import "time"

// Task states.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a unit of work inside a project, optionally assigned to a user.
type Task struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description"`
	Status      string    `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
	Priority    string    `json:"priority" validate:"required,oneof=low medium high"`
	DueDate     *Date     `json:"due_date"`
	AssignedTo  *int64    `json:"assigned_to"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedBy   int64     `json:"created_by" validate:"required"`
}

// Validate checks required fields and enumerated values.
// Returns an error wrapping ErrValidation.
func (t *Task) Validate() error {
	return validateStruct(t)
}

// TaskPatch names the mutable task fields. The creator is immutable.
type TaskPatch struct {
	ProjectID   *int64          `json:"project_id"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *string         `json:"status"`
	Priority    *string         `json:"priority"`
	DueDate     Nullable[Date]  `json:"due_date"`
	AssignedTo  Nullable[int64] `json:"assigned_to"`
}

// ApplyTo merges the patch into t.
func (p *TaskPatch) ApplyTo(t *Task) {
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	p.DueDate.Apply(&t.DueDate)
	p.AssignedTo.Apply(&t.AssignedTo)
}
