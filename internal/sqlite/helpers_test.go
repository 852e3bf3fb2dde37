package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/pmstore/internal/auth"
	"github.com/mesh-intelligence/pmstore/internal/logging"
	"github.com/mesh-intelligence/pmstore/pkg/types"
)

func openTestBackend(t *testing.T, policy string) *Backend {
	t.Helper()
	return openBackendAt(t, t.TempDir(), policy)
}

func openBackendAt(t *testing.T, dir, policy string) *Backend {
	t.Helper()
	b := NewBackend(
		WithHasher(auth.NewBcryptHasher(bcrypt.MinCost)),
		WithLogger(logging.Discard()),
	)
	require.NoError(t, b.Open(types.Config{
		Backend:      types.BackendSQLite,
		DataDir:      dir,
		DeletePolicy: policy,
	}))
	t.Cleanup(func() { b.Close() })
	return b
}

func table(t *testing.T, b types.Tables, name string) types.Table {
	t.Helper()
	tbl, err := b.GetTable(name)
	require.NoError(t, err)
	return tbl
}

func ptr[T any](v T) *T { return &v }

// fixture holds one row of each entity type.
type fixture struct {
	admin, member int64
	project       int64
	task          int64
	document      int64
	comment       int64
}

func createUser(t *testing.T, b types.Tables, username string) int64 {
	t.Helper()
	id, err := table(t, b, types.UsersTable).Create(&types.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
		IsActive: true,
		Role:     types.RoleUser,
	})
	require.NoError(t, err)
	return id
}

func createProject(t *testing.T, b types.Tables, creator int64) int64 {
	t.Helper()
	id, err := table(t, b, types.ProjectsTable).Create(&types.Project{
		Name:      "Hull survey",
		StartDate: types.NewDate(2024, time.March, 1),
		Status:    types.ProjectStatusActive,
		CreatedBy: creator,
	})
	require.NoError(t, err)
	return id
}

func createTask(t *testing.T, b types.Tables, project, creator int64, assignee *int64) int64 {
	t.Helper()
	id, err := table(t, b, types.TasksTable).Create(&types.Task{
		ProjectID:  project,
		Title:      "Inspect welds",
		Status:     types.TaskStatusPending,
		Priority:   types.PriorityMedium,
		AssignedTo: assignee,
		CreatedBy:  creator,
	})
	require.NoError(t, err)
	return id
}

func createDocument(t *testing.T, b types.Tables, project, creator int64) int64 {
	t.Helper()
	id, err := table(t, b, types.DocumentsTable).Create(&types.Document{
		ProjectID: project,
		Title:     "Weld report",
		FilePath:  "/documents/welds.pdf",
		FileType:  "pdf",
		Version:   "1.0",
		CreatedBy: creator,
	})
	require.NoError(t, err)
	return id
}

func newFixture(t *testing.T, b types.Tables) fixture {
	t.Helper()
	var f fixture
	f.admin = createUser(t, b, "admin_user")
	f.member = createUser(t, b, "member")
	f.project = createProject(t, b, f.admin)
	f.task = createTask(t, b, f.project, f.admin, &f.member)
	f.document = createDocument(t, b, f.project, f.admin)

	id, err := table(t, b, types.CommentsTable).Create(&types.Comment{
		Content:   "Looks good",
		TaskID:    &f.task,
		CreatedBy: f.member,
	})
	require.NoError(t, err)
	f.comment = id
	return f
}

func count(t *testing.T, b types.Tables, name string) int {
	t.Helper()
	all, err := table(t, b, name).List(0, 1000)
	require.NoError(t, err)
	return len(all)
}
