package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntity(t *testing.T) {
	t.Run("user defaults to active", func(t *testing.T) {
		e, err := ParseEntity(UsersTable, []byte(`{"username":"alice","email":"a@example.com","password":"pw","role":"user"}`))
		require.NoError(t, err)
		u := e.(*User)
		assert.True(t, u.IsActive)
		assert.Equal(t, "pw", u.Password)
	})

	t.Run("explicit is_active false is kept", func(t *testing.T) {
		e, err := ParseEntity(UsersTable, []byte(`{"username":"bob","email":"b@example.com","password":"pw","role":"user","is_active":false}`))
		require.NoError(t, err)
		assert.False(t, e.(*User).IsActive)
	})

	t.Run("project dates are parsed", func(t *testing.T) {
		e, err := ParseEntity(ProjectsTable, []byte(`{"name":"p","start_date":"2024-03-20","end_date":null,"status":"active","created_by":1}`))
		require.NoError(t, err)
		p := e.(*Project)
		assert.Equal(t, "2024-03-20", p.StartDate.String())
		assert.Nil(t, p.EndDate)
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		_, err := ParseEntity(TasksTable, []byte(`{"title":"t","wbs_code":"1.1"}`))
		assert.ErrorIs(t, err, ErrUnknownField)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("wrong type is a validation error", func(t *testing.T) {
		_, err := ParseEntity(TasksTable, []byte(`{"project_id":"one"}`))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("trailing data is rejected", func(t *testing.T) {
		_, err := ParseEntity(CommentsTable, []byte(`{"content":"a"} {"content":"b"}`))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := ParseEntity("resources", []byte(`{}`))
		assert.ErrorIs(t, err, ErrTableNotFound)
	})
}

func TestParsePatch(t *testing.T) {
	t.Run("task patch tracks cleared assignee", func(t *testing.T) {
		p, err := ParsePatch(TasksTable, []byte(`{"status":"completed","assigned_to":null}`))
		require.NoError(t, err)
		tp := p.(*TaskPatch)
		require.NotNil(t, tp.Status)
		assert.Equal(t, TaskStatusCompleted, *tp.Status)
		assert.True(t, tp.AssignedTo.Set)
		assert.Nil(t, tp.AssignedTo.Value)
		assert.False(t, tp.DueDate.Set)
	})

	t.Run("immutable creator is rejected", func(t *testing.T) {
		_, err := ParsePatch(ProjectsTable, []byte(`{"created_by":2}`))
		assert.ErrorIs(t, err, ErrUnknownField)
	})

	t.Run("applied patch leaves absent fields alone", func(t *testing.T) {
		p, err := ParsePatch(ProjectsTable, []byte(`{"end_date":"2024-12-31"}`))
		require.NoError(t, err)

		proj := &Project{Name: "keep", StartDate: NewDate(2024, time.January, 1), Status: ProjectStatusActive}
		p.(*ProjectPatch).ApplyTo(proj)
		assert.Equal(t, "keep", proj.Name)
		require.NotNil(t, proj.EndDate)
		assert.Equal(t, "2024-12-31", proj.EndDate.String())
	})
}
