package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL for all tables. Column names, nullability, lengths, foreign keys,
// and the comment reference check follow the persisted layout; SQLite does
// not enforce VARCHAR lengths, so the store validates them before writing.
const (
	createUsers = `CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username VARCHAR(50) NOT NULL UNIQUE,
    email VARCHAR(100) NOT NULL UNIQUE,
    hashed_password VARCHAR(200) NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT 1,
    role VARCHAR(20) NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);`

	createProjects = `CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name VARCHAR(100) NOT NULL,
    description TEXT,
    start_date DATE NOT NULL,
    end_date DATE,
    status VARCHAR(20) NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    created_by INTEGER NOT NULL,
    FOREIGN KEY (created_by) REFERENCES users(id)
);`

	createTasks = `CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL,
    title VARCHAR(200) NOT NULL,
    description TEXT,
    status VARCHAR(20) NOT NULL,
    priority VARCHAR(20) NOT NULL,
    due_date DATE,
    assigned_to INTEGER,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    created_by INTEGER NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id),
    FOREIGN KEY (assigned_to) REFERENCES users(id),
    FOREIGN KEY (created_by) REFERENCES users(id)
);`

	createDocuments = `CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL,
    title VARCHAR(200) NOT NULL,
    file_path VARCHAR(500) NOT NULL,
    file_type VARCHAR(50) NOT NULL,
    version VARCHAR(20) NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    created_by INTEGER NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id),
    FOREIGN KEY (created_by) REFERENCES users(id)
);`

	createComments = `CREATE TABLE IF NOT EXISTS comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    content TEXT NOT NULL,
    task_id INTEGER,
    document_id INTEGER,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    created_by INTEGER NOT NULL,
    FOREIGN KEY (task_id) REFERENCES tasks(id),
    FOREIGN KEY (document_id) REFERENCES documents(id),
    FOREIGN KEY (created_by) REFERENCES users(id),
    CONSTRAINT check_comment_reference CHECK (
        (task_id IS NOT NULL AND document_id IS NULL) OR
        (task_id IS NULL AND document_id IS NOT NULL)
    )
);`
)

// Index DDL for the foreign-key columns the integrity checks scan.
const (
	idxProjectsCreatedBy  = `CREATE INDEX IF NOT EXISTS idx_projects_created_by ON projects(created_by);`
	idxTasksProject       = `CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);`
	idxTasksAssignedTo    = `CREATE INDEX IF NOT EXISTS idx_tasks_assigned_to ON tasks(assigned_to);`
	idxTasksCreatedBy     = `CREATE INDEX IF NOT EXISTS idx_tasks_created_by ON tasks(created_by);`
	idxDocumentsProject   = `CREATE INDEX IF NOT EXISTS idx_documents_project ON documents(project_id);`
	idxDocumentsCreatedBy = `CREATE INDEX IF NOT EXISTS idx_documents_created_by ON documents(created_by);`
	idxCommentsTask       = `CREATE INDEX IF NOT EXISTS idx_comments_task ON comments(task_id);`
	idxCommentsDocument   = `CREATE INDEX IF NOT EXISTS idx_comments_document ON comments(document_id);`
	idxCommentsCreatedBy  = `CREATE INDEX IF NOT EXISTS idx_comments_created_by ON comments(created_by);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createUsers,
	createProjects,
	createTasks,
	createDocuments,
	createComments,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxProjectsCreatedBy,
	idxTasksProject,
	idxTasksAssignedTo,
	idxTasksCreatedBy,
	idxDocumentsProject,
	idxDocumentsCreatedBy,
	idxCommentsTask,
	idxCommentsDocument,
	idxCommentsCreatedBy,
}

// createSchema creates every table and index that does not exist yet.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ddl := range schemaDDL {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema: %w", err)
	}
	return nil
}
