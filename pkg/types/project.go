package types

import "time"

// Project states.
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusSuspended = "suspended"
)

// Project groups tasks and documents under one creator.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description"`
	StartDate   Date      `json:"start_date"`
	EndDate     *Date     `json:"end_date"`
	Status      string    `json:"status" validate:"required,oneof=planning active completed suspended"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedBy   int64     `json:"created_by" validate:"required"`
}

// Validate checks required fields and that the end date, when set, is not
// before the start date. Returns an error wrapping ErrValidation.
func (p *Project) Validate() error {
	if err := validateStruct(p); err != nil {
		return err
	}
	if p.StartDate.IsZero() {
		return invalid("start_date is required")
	}
	if p.EndDate != nil && !p.EndDate.IsZero() && p.StartDate.After(*p.EndDate) {
		return invalid("end_date %s is before start_date %s", p.EndDate, p.StartDate)
	}
	return nil
}

// ProjectPatch names the mutable project fields. The creator is immutable.
type ProjectPatch struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	StartDate   *Date          `json:"start_date"`
	EndDate     Nullable[Date] `json:"end_date"`
	Status      *string        `json:"status"`
}

// ApplyTo merges the patch into p.
func (pp *ProjectPatch) ApplyTo(p *Project) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.StartDate != nil {
		p.StartDate = *pp.StartDate
	}
	pp.EndDate.Apply(&p.EndDate)
	if pp.Status != nil {
		p.Status = *pp.Status
	}
}
