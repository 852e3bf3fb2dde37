// Package seed loads the fixed starter dataset: an administrator, a test
// user, and one project with a task, a document, and a comment.
package seed

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// Default credentials for the seeded accounts.
const (
	DefaultAdminPassword = "admin123"
	DefaultUserPassword  = "test123"
)

// Seeded values that callers and tests look up.
const (
	AdminUsername = "admin"
	AdminEmail    = "admin@example.com"
	TestUsername  = "test_user"
	TestEmail     = "test@example.com"

	ProjectName        = "Ship design project"
	ProjectDescription = "Hull and superstructure design for the demonstration vessel"
	TaskTitle          = "Complete system testing"
	TaskDescription    = "Run the full system test suite and record the results"
	DocumentTitle      = "System test report"
	DocumentPath       = "/documents/test_report.pdf"
	DocumentType       = "pdf"
	DocumentVersion    = "1.0"
	CommentContent     = "System runs normally, ready for the next round of testing"
)

// Options controls the seeded credentials and the date used for the project
// start and task due date.
type Options struct {
	AdminPassword string
	UserPassword  string
	Today         types.Date
}

func (o Options) withDefaults() Options {
	if o.AdminPassword == "" {
		o.AdminPassword = DefaultAdminPassword
	}
	if o.UserPassword == "" {
		o.UserPassword = DefaultUserPassword
	}
	if o.Today.IsZero() {
		o.Today = types.Today()
	}
	return o
}

// Result holds the ids of the seeded rows.
type Result struct {
	AdminID    int64 `json:"admin_id"`
	UserID     int64 `json:"user_id"`
	ProjectID  int64 `json:"project_id"`
	TaskID     int64 `json:"task_id"`
	DocumentID int64 `json:"document_id"`
	CommentID  int64 `json:"comment_id"`
}

// Error reports the seed step that failed. Nothing from the run is kept.
type Error struct {
	Step string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("seeding %s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// errPopulated stops LoadIfEmpty's batch without creating anything.
var errPopulated = errors.New("store already has users")

// Load creates the dataset in one batch. A store that was already seeded
// rejects the run with a duplicate-username ErrValidation and is left
// unchanged.
func Load(store types.Store, opts Options) (*Result, error) {
	var res *Result
	err := store.Batch(func(tx types.Tables) error {
		var err error
		res, err = create(tx, opts.withDefaults())
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// LoadIfEmpty runs Load unless the users table already has rows, in which
// case it returns nil, nil.
func LoadIfEmpty(store types.Store, opts Options) (*Result, error) {
	var res *Result
	err := store.Batch(func(tx types.Tables) error {
		users, err := tx.GetTable(types.UsersTable)
		if err != nil {
			return err
		}
		existing, err := users.List(0, 1)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return errPopulated
		}
		res, err = create(tx, opts.withDefaults())
		return err
	})
	if errors.Is(err, errPopulated) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// create inserts the dataset in dependency order.
func create(tx types.Tables, opts Options) (*Result, error) {
	var res Result
	steps := []struct {
		name  string
		table string
		build func() any
		id    *int64
	}{
		{"admin user", types.UsersTable, func() any {
			return &types.User{
				Username: AdminUsername,
				Email:    AdminEmail,
				Password: opts.AdminPassword,
				IsActive: true,
				Role:     types.RoleAdmin,
			}
		}, &res.AdminID},
		{"test user", types.UsersTable, func() any {
			return &types.User{
				Username: TestUsername,
				Email:    TestEmail,
				Password: opts.UserPassword,
				IsActive: true,
				Role:     types.RoleUser,
			}
		}, &res.UserID},
		{"project", types.ProjectsTable, func() any {
			return &types.Project{
				Name:        ProjectName,
				Description: ProjectDescription,
				StartDate:   opts.Today,
				Status:      types.ProjectStatusActive,
				CreatedBy:   res.AdminID,
			}
		}, &res.ProjectID},
		{"task", types.TasksTable, func() any {
			due := opts.Today
			assignee := res.UserID
			return &types.Task{
				ProjectID:   res.ProjectID,
				Title:       TaskTitle,
				Description: TaskDescription,
				Status:      types.TaskStatusPending,
				Priority:    types.PriorityHigh,
				DueDate:     &due,
				AssignedTo:  &assignee,
				CreatedBy:   res.AdminID,
			}
		}, &res.TaskID},
		{"document", types.DocumentsTable, func() any {
			return &types.Document{
				ProjectID: res.ProjectID,
				Title:     DocumentTitle,
				FilePath:  DocumentPath,
				FileType:  DocumentType,
				Version:   DocumentVersion,
				CreatedBy: res.AdminID,
			}
		}, &res.DocumentID},
		{"comment", types.CommentsTable, func() any {
			task := res.TaskID
			return &types.Comment{
				Content:   CommentContent,
				TaskID:    &task,
				CreatedBy: res.UserID,
			}
		}, &res.CommentID},
	}

	for _, step := range steps {
		tbl, err := tx.GetTable(step.table)
		if err != nil {
			return nil, &Error{Step: step.name, Err: err}
		}
		id, err := tbl.Create(step.build())
		if err != nil {
			return nil, &Error{Step: step.name, Err: err}
		}
		*step.id = id
	}
	return &res, nil
}
