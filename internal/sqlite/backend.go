// Package sqlite implements the SQLite record store for pmstore.
// SQLite is the source of truth; every mutation and the integrity checks
// that guard it run in one transaction under the backend write lock.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/pmstore/internal/auth"
	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// DBFileName is the database file created inside Config.DataDir.
const DBFileName = "pmstore.db"

// dsnPragmas are applied to every connection the driver opens.
const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"

// Compile-time interface check.
var _ types.Store = (*Backend)(nil)

// Backend implements the Store interface on a single SQLite database file.
type Backend struct {
	mu     sync.RWMutex
	open   bool
	config types.Config
	db     *sql.DB
	tables map[string]types.Table

	hasher types.Hasher
	log    *logrus.Logger
	now    func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithHasher sets the password hasher used for user credentials.
func WithHasher(h types.Hasher) Option {
	return func(b *Backend) { b.hasher = h }
}

// WithLogger sets the logger for lifecycle and cascade events.
func WithLogger(l *logrus.Logger) Option {
	return func(b *Backend) { b.log = l }
}

// WithClock overrides the time source used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// NewBackend creates a new SQLite backend instance. The backend is not open;
// call Open with a Config to initialize. Without options it hashes with
// bcrypt at the default cost and logs to the logrus standard logger.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		tables: make(map[string]types.Table),
		hasher: auth.NewBcryptHasher(0),
		log:    logrus.StandardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// GetTable returns the Table for the named table.
// Returns ErrTableNotFound if the table name is not recognized.
// Returns ErrStoreClosed if the backend is not open.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.open {
		return nil, types.ErrStoreClosed
	}
	table, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return table, nil
}

// Open creates DataDir if needed, opens the database file, and creates the
// schema when the file is new. Existing data is kept.
// Returns ErrAlreadyOpen if already open.
func (b *Backend) Open(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		return types.ErrAlreadyOpen
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	db, err := sql.Open("sqlite", dbPath+dsnPragmas)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// One connection: writers never contend for the file lock, and a batch
	// transaction sees every statement issued through it.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.open = true

	direct := &session{backend: b}
	for _, name := range types.StandardTableNames {
		b.tables[name] = direct.table(name)
	}

	b.log.WithFields(logrus.Fields{
		"path":          dbPath,
		"delete_policy": config.GetDeletePolicy(),
	}).Info("store opened")
	return nil
}

// Close releases the database connection. After Close, all operations return
// ErrStoreClosed. Close is idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil
	}
	b.open = false
	b.tables = make(map[string]types.Table)

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	b.db = nil
	b.log.Info("store closed")
	return nil
}

// ErrBatchAborted is returned by Batch when an operation inside the batch
// failed but the callback still returned nil.
var ErrBatchAborted = errors.New("batch aborted")

// Batch runs fn with tables bound to one transaction while holding the write
// lock. The transaction commits only if fn returns nil and no table operation
// inside it failed.
func (b *Backend) Batch(fn func(tx types.Tables) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return types.ErrStoreClosed
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning batch: %w", err)
	}
	defer tx.Rollback()

	s := &session{backend: b, tx: tx}
	if err := fn(s); err != nil {
		return err
	}
	if s.err != nil {
		return fmt.Errorf("%w: %w", ErrBatchAborted, s.err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// deletePolicy returns the configured delete policy.
func (b *Backend) deletePolicy() string {
	return b.config.GetDeletePolicy()
}
