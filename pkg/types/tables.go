package types

// Standard table names for Store.GetTable.
const (
	UsersTable     = "users"
	ProjectsTable  = "projects"
	TasksTable     = "tasks"
	DocumentsTable = "documents"
	CommentsTable  = "comments"
)

// StandardTableNames lists all standard table names in dependency order:
// every table appears after the tables it references.
var StandardTableNames = []string{
	UsersTable,
	ProjectsTable,
	TasksTable,
	DocumentsTable,
	CommentsTable,
}
