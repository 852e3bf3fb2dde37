package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/pmstore/internal/auth"
	"github.com/mesh-intelligence/pmstore/internal/logging"
	"github.com/mesh-intelligence/pmstore/internal/sqlite"
	"github.com/mesh-intelligence/pmstore/pkg/types"
)

var seedDay = types.NewDate(2024, time.March, 20)

func openStore(t *testing.T) *sqlite.Backend {
	t.Helper()
	b := sqlite.NewBackend(
		sqlite.WithHasher(auth.NewBcryptHasher(bcrypt.MinCost)),
		sqlite.WithLogger(logging.Discard()),
	)
	require.NoError(t, b.Open(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Close() })
	return b
}

func counts(t *testing.T, store types.Store) map[string]int {
	t.Helper()
	out := make(map[string]int)
	for _, name := range types.StandardTableNames {
		tbl, err := store.GetTable(name)
		require.NoError(t, err)
		rows, err := tbl.List(0, 100)
		require.NoError(t, err)
		out[name] = len(rows)
	}
	return out
}

func get[T any](t *testing.T, store types.Store, table string, id int64) *T {
	t.Helper()
	tbl, err := store.GetTable(table)
	require.NoError(t, err)
	v, err := tbl.Get(id)
	require.NoError(t, err)
	return v.(*T)
}

func TestLoad(t *testing.T) {
	store := openStore(t)

	res, err := Load(store, Options{Today: seedDay})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		types.UsersTable:     2,
		types.ProjectsTable:  1,
		types.TasksTable:     1,
		types.DocumentsTable: 1,
		types.CommentsTable:  1,
	}, counts(t, store))

	admin := get[types.User](t, store, types.UsersTable, res.AdminID)
	assert.Equal(t, AdminUsername, admin.Username)
	assert.Equal(t, types.RoleAdmin, admin.Role)
	assert.NoError(t, auth.CheckPassword(DefaultAdminPassword, admin.PasswordHash))

	member := get[types.User](t, store, types.UsersTable, res.UserID)
	assert.Equal(t, TestUsername, member.Username)
	assert.Equal(t, types.RoleUser, member.Role)
	assert.NoError(t, auth.CheckPassword(DefaultUserPassword, member.PasswordHash))

	project := get[types.Project](t, store, types.ProjectsTable, res.ProjectID)
	assert.Equal(t, ProjectName, project.Name)
	assert.Equal(t, types.ProjectStatusActive, project.Status)
	assert.Equal(t, seedDay.String(), project.StartDate.String())
	assert.Equal(t, res.AdminID, project.CreatedBy)

	task := get[types.Task](t, store, types.TasksTable, res.TaskID)
	assert.Equal(t, TaskTitle, task.Title)
	assert.Equal(t, types.PriorityHigh, task.Priority)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, res.UserID, *task.AssignedTo)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, seedDay.String(), task.DueDate.String())

	doc := get[types.Document](t, store, types.DocumentsTable, res.DocumentID)
	assert.Equal(t, DocumentPath, doc.FilePath)
	assert.Equal(t, DocumentVersion, doc.Version)

	comment := get[types.Comment](t, store, types.CommentsTable, res.CommentID)
	require.NotNil(t, comment.TaskID)
	assert.Equal(t, res.TaskID, *comment.TaskID)
	assert.Nil(t, comment.DocumentID)
	assert.Equal(t, res.UserID, comment.CreatedBy)
}

func TestLoad_SecondRunRejected(t *testing.T) {
	store := openStore(t)
	_, err := Load(store, Options{Today: seedDay})
	require.NoError(t, err)
	before := counts(t, store)

	_, err = Load(store, Options{Today: seedDay})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrValidation)

	var seedErr *Error
	require.ErrorAs(t, err, &seedErr)
	assert.Equal(t, "admin user", seedErr.Step)

	assert.Equal(t, before, counts(t, store))
}

func TestLoad_CustomPasswords(t *testing.T) {
	store := openStore(t)
	res, err := Load(store, Options{AdminPassword: "s3cret-admin", UserPassword: "s3cret-user"})
	require.NoError(t, err)

	admin := get[types.User](t, store, types.UsersTable, res.AdminID)
	assert.NoError(t, auth.CheckPassword("s3cret-admin", admin.PasswordHash))
	assert.Error(t, auth.CheckPassword(DefaultAdminPassword, admin.PasswordHash))
}

func TestLoadIfEmpty(t *testing.T) {
	store := openStore(t)

	res, err := LoadIfEmpty(store, Options{Today: seedDay})
	require.NoError(t, err)
	require.NotNil(t, res)

	res, err = LoadIfEmpty(store, Options{Today: seedDay})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 2, counts(t, store)[types.UsersTable])
}

func TestError_Unwrap(t *testing.T) {
	err := &Error{Step: "task", Err: types.ErrDanglingReference}
	assert.ErrorIs(t, err, types.ErrDanglingReference)
	assert.Equal(t, "seeding task: dangling reference", err.Error())
}
