package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestEntityValidate(t *testing.T) {
	start := NewDate(2024, time.March, 1)

	tests := []struct {
		name    string
		entity  interface{ Validate() error }
		wantErr bool
		errText string
	}{
		{
			name:   "valid user",
			entity: &User{Username: "test_user", Email: "test@example.com", Password: "pw", Role: RoleUser},
		},
		{
			name:    "username with spaces",
			entity:  &User{Username: "test user", Email: "test@example.com", Password: "pw", Role: RoleUser},
			wantErr: true,
			errText: "username",
		},
		{
			name:    "unknown role",
			entity:  &User{Username: "test_user", Email: "test@example.com", Password: "pw", Role: "root"},
			wantErr: true,
			errText: "role must be one of",
		},
		{
			name:    "bad email",
			entity:  &User{Username: "test_user", Email: "nope", Password: "pw", Role: RoleUser},
			wantErr: true,
			errText: "email",
		},
		{
			name:    "user without password",
			entity:  &User{Username: "test_user", Email: "test@example.com", Role: RoleUser},
			wantErr: true,
			errText: "password is required",
		},
		{
			name:   "valid project with end date",
			entity: &Project{Name: "p", StartDate: start, EndDate: ptr(NewDate(2024, time.March, 2)), Status: ProjectStatusActive, CreatedBy: 1},
		},
		{
			name:   "project ending on its start date",
			entity: &Project{Name: "p", StartDate: start, EndDate: ptr(start), Status: ProjectStatusActive, CreatedBy: 1},
		},
		{
			name:    "project ending before it starts",
			entity:  &Project{Name: "p", StartDate: start, EndDate: ptr(NewDate(2024, time.February, 1)), Status: ProjectStatusActive, CreatedBy: 1},
			wantErr: true,
			errText: "before start_date",
		},
		{
			name:    "project without start date",
			entity:  &Project{Name: "p", Status: ProjectStatusActive, CreatedBy: 1},
			wantErr: true,
			errText: "start_date is required",
		},
		{
			name:    "project without creator",
			entity:  &Project{Name: "p", StartDate: start, Status: ProjectStatusActive},
			wantErr: true,
			errText: "created_by is required",
		},
		{
			name:    "task with unknown priority",
			entity:  &Task{ProjectID: 1, Title: "t", Status: TaskStatusPending, Priority: "urgent", CreatedBy: 1},
			wantErr: true,
			errText: "priority",
		},
		{
			name:    "document with long version",
			entity:  &Document{ProjectID: 1, Title: "d", FilePath: "/f", FileType: "pdf", Version: "1.0.0.0.0.0.0.0.0.0.0", CreatedBy: 1},
			wantErr: true,
			errText: "version must be at most 20",
		},
		{
			name:    "comment without content",
			entity:  &Comment{TaskID: ptr(int64(1)), CreatedBy: 1},
			wantErr: true,
			errText: "content is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entity.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "created_by", fieldName("CreatedBy"))
	assert.Equal(t, "project_id", fieldName("ProjectID"))
	assert.Equal(t, "id", fieldName("ID"))
	assert.Equal(t, "file_path", fieldName("FilePath"))
}
