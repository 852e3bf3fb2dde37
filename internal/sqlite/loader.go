package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// ImportResult reports, per table, how many snapshot records were loaded and
// how many were skipped.
type ImportResult struct {
	Loaded  map[string]int
	Skipped map[string]int
}

// snapshotTable exports and imports one table. Tables are listed in
// dependency order so every reference resolves during import.
type snapshotTable struct {
	name   string
	export func(q querier) ([]json.RawMessage, error)
	load   func(tx *sql.Tx, line json.RawMessage, now time.Time) error
}

var snapshotTables = []snapshotTable{
	{
		name: types.UsersTable,
		export: func(q querier) ([]json.RawMessage, error) {
			users, err := listUsers(q, 0, -1)
			if err != nil {
				return nil, err
			}
			return marshalAll(users, marshalUser)
		},
		load: func(tx *sql.Tx, line json.RawMessage, now time.Time) error {
			u, err := unmarshalUser(line)
			if err != nil {
				return err
			}
			stamp(&u.CreatedAt, &u.UpdatedAt, now)
			if err := prepareImport(u.ID, u.Validate); err != nil {
				return err
			}
			if err := checkUser(tx, u); err != nil {
				return err
			}
			_, err = insertUser(tx, u)
			return err
		},
	},
	{
		name: types.ProjectsTable,
		export: func(q querier) ([]json.RawMessage, error) {
			projects, err := listProjects(q, 0, -1)
			if err != nil {
				return nil, err
			}
			return marshalAll(projects, marshalEntity[types.Project])
		},
		load: func(tx *sql.Tx, line json.RawMessage, now time.Time) error {
			p, err := unmarshalEntity[types.Project](line)
			if err != nil {
				return err
			}
			stamp(&p.CreatedAt, &p.UpdatedAt, now)
			if err := prepareImport(p.ID, p.Validate); err != nil {
				return err
			}
			if err := checkProject(tx, p); err != nil {
				return err
			}
			_, err = insertProject(tx, p)
			return err
		},
	},
	{
		name: types.TasksTable,
		export: func(q querier) ([]json.RawMessage, error) {
			tasks, err := listTasks(q, 0, -1)
			if err != nil {
				return nil, err
			}
			return marshalAll(tasks, marshalEntity[types.Task])
		},
		load: func(tx *sql.Tx, line json.RawMessage, now time.Time) error {
			t, err := unmarshalEntity[types.Task](line)
			if err != nil {
				return err
			}
			stamp(&t.CreatedAt, &t.UpdatedAt, now)
			if err := prepareImport(t.ID, t.Validate); err != nil {
				return err
			}
			if err := checkTask(tx, t); err != nil {
				return err
			}
			_, err = insertTask(tx, t)
			return err
		},
	},
	{
		name: types.DocumentsTable,
		export: func(q querier) ([]json.RawMessage, error) {
			docs, err := listDocuments(q, 0, -1)
			if err != nil {
				return nil, err
			}
			return marshalAll(docs, marshalEntity[types.Document])
		},
		load: func(tx *sql.Tx, line json.RawMessage, now time.Time) error {
			d, err := unmarshalEntity[types.Document](line)
			if err != nil {
				return err
			}
			stamp(&d.CreatedAt, &d.UpdatedAt, now)
			if err := prepareImport(d.ID, d.Validate); err != nil {
				return err
			}
			if err := checkDocument(tx, d); err != nil {
				return err
			}
			_, err = insertDocument(tx, d)
			return err
		},
	},
	{
		name: types.CommentsTable,
		export: func(q querier) ([]json.RawMessage, error) {
			comments, err := listComments(q, 0, -1)
			if err != nil {
				return nil, err
			}
			return marshalAll(comments, marshalEntity[types.Comment])
		},
		load: func(tx *sql.Tx, line json.RawMessage, now time.Time) error {
			c, err := unmarshalEntity[types.Comment](line)
			if err != nil {
				return err
			}
			stamp(&c.CreatedAt, &c.UpdatedAt, now)
			if err := prepareImport(c.ID, c.Validate); err != nil {
				return err
			}
			if err := checkComment(tx, c); err != nil {
				return err
			}
			_, err = insertComment(tx, c)
			return err
		},
	},
}

// prepareImport rejects records without an id, then validates them.
func prepareImport(id int64, validate func() error) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be positive", types.ErrValidation)
	}
	return validate()
}

// stamp fills timestamps missing from a snapshot record.
func stamp(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}

// Export writes every table to dir as <table>.jsonl, one record per line in
// id order. Each file is replaced atomically. User records carry their
// password hash.
func (b *Backend) Export(dir string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.open {
		return types.ErrStoreClosed
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	for _, st := range snapshotTables {
		records, err := st.export(b.db)
		if err != nil {
			return fmt.Errorf("exporting %s: %w", st.name, err)
		}
		if err := writeJSONL(filepath.Join(dir, snapshotFile(st.name)), records); err != nil {
			return fmt.Errorf("writing %s: %w", st.name, err)
		}
		b.log.WithFields(logrus.Fields{"table": st.name, "records": len(records)}).Debug("exported table")
	}
	b.log.WithField("dir", dir).Info("store exported")
	return nil
}

// Import loads a snapshot written by Export into an empty store, keeping ids
// and timestamps. Missing files count as empty tables. Malformed lines and
// records that fail validation or integrity checks are skipped and logged.
// Everything loads in one transaction. Returns ErrStoreNotEmpty if any
// table already has rows.
func (b *Backend) Import(dir string) (*ImportResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil, types.ErrStoreClosed
	}

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	for _, st := range snapshotTables {
		var n int
		if err := tx.QueryRow("SELECT COUNT(*) FROM " + st.name).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", st.name, err)
		}
		if n > 0 {
			return nil, fmt.Errorf("%w: %s has %d rows", types.ErrStoreNotEmpty, st.name, n)
		}
	}

	result := &ImportResult{Loaded: make(map[string]int), Skipped: make(map[string]int)}
	now := b.now().UTC()

	for _, st := range snapshotTables {
		file := filepath.Join(dir, snapshotFile(st.name))
		records, malformed, err := readJSONL(file)
		if err != nil {
			return nil, err
		}
		if malformed > 0 {
			b.log.WithFields(logrus.Fields{"file": file, "lines": malformed}).Warn("skipped malformed lines")
		}
		result.Skipped[st.name] = malformed

		for i, line := range records {
			if err := st.load(tx, line, now); err != nil {
				b.log.WithFields(logrus.Fields{
					"table":  st.name,
					"record": i + 1,
					"error":  err,
				}).Warn("skipped record")
				result.Skipped[st.name]++
				continue
			}
			result.Loaded[st.name]++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import transaction: %w", err)
	}
	b.log.WithFields(logrus.Fields{"dir": dir, "loaded": result.Loaded}).Info("store imported")
	return result, nil
}
