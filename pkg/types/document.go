package types

import "time"

// Document is a versioned file attached to a project.
type Document struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id" validate:"required"`
	Title     string    `json:"title" validate:"required,max=200"`
	FilePath  string    `json:"file_path" validate:"required,max=500"`
	FileType  string    `json:"file_type" validate:"required,max=50"`
	Version   string    `json:"version" validate:"required,max=20"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy int64     `json:"created_by" validate:"required"`
}

// Validate checks required fields and lengths.
// Returns an error wrapping ErrValidation.
func (d *Document) Validate() error {
	return validateStruct(d)
}

// DocumentPatch names the mutable document fields. The creator is immutable.
type DocumentPatch struct {
	ProjectID *int64  `json:"project_id"`
	Title     *string `json:"title"`
	FilePath  *string `json:"file_path"`
	FileType  *string `json:"file_type"`
	Version   *string `json:"version"`
}

// ApplyTo merges the patch into d.
func (p *DocumentPatch) ApplyTo(d *Document) {
	if p.ProjectID != nil {
		d.ProjectID = *p.ProjectID
	}
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.FilePath != nil {
		d.FilePath = *p.FilePath
	}
	if p.FileType != nil {
		d.FileType = *p.FileType
	}
	if p.Version != nil {
		d.Version = *p.Version
	}
}
