package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// Compile-time interface check: usersTable must implement Table.
var _ types.Table = (*usersTable)(nil)

const userColumns = "id, username, email, hashed_password, is_active, role, created_at, updated_at"

// usersTable implements the Table interface for the users entity type.
// Plaintext passwords are hashed before the write lock is taken and never
// reach the database.
type usersTable struct {
	s *session
}

func scanUser(row rowScanner) (*types.User, error) {
	var (
		u                types.User
		created, updated timeValue
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.Role, &created, &updated); err != nil {
		return nil, err
	}
	u.CreatedAt = created.Time
	u.UpdatedAt = updated.Time
	return &u, nil
}

func getUser(q querier, id int64) (*types.User, error) {
	if id <= 0 {
		return nil, types.ErrNotFound
	}
	u, err := scanUser(q.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("user %d", id))
	}
	return u, nil
}

func listUsers(q querier, offset, limit int) ([]*types.User, error) {
	return queryAll(q, scanUser, "SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?", pageArgs(offset, limit)...)
}

func insertUser(q querier, u *types.User) (int64, error) {
	res, err := q.Exec(
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		newIDArg(u.ID), u.Username, u.Email, u.PasswordHash, u.IsActive, u.Role,
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting user: %w", err)
	}
	return res.LastInsertId()
}

// checkUser enforces username and email uniqueness.
func checkUser(q querier, u *types.User) error {
	if err := requireUnique(q, types.UsersTable, "username", u.Username, u.ID); err != nil {
		return err
	}
	return requireUnique(q, types.UsersTable, "email", u.Email, u.ID)
}

// hashPassword moves a plaintext password into PasswordHash.
func (ut *usersTable) hashPassword(u *types.User) error {
	if u.Password == "" {
		return nil
	}
	hash, err := ut.s.backend.hasher.Hash(u.Password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Password = ""
	return nil
}

// Create validates the user, hashes its password, and inserts it.
func (ut *usersTable) Create(data any) (int64, error) {
	u, ok := data.(*types.User)
	if !ok {
		return 0, ut.s.fail(types.ErrInvalidData)
	}
	rec := *u
	rec.ID = 0
	if err := rec.Validate(); err != nil {
		return 0, ut.s.fail(err)
	}
	if err := ut.hashPassword(&rec); err != nil {
		return 0, ut.s.fail(err)
	}

	err := ut.s.write(func(tx *sql.Tx, now time.Time) error {
		if err := checkUser(tx, &rec); err != nil {
			return err
		}
		rec.CreatedAt, rec.UpdatedAt = now, now
		id, err := insertUser(tx, &rec)
		if err != nil {
			return err
		}
		rec.ID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	*u = rec
	return rec.ID, nil
}

// Get retrieves a user by ID.
func (ut *usersTable) Get(id int64) (any, error) {
	var u *types.User
	err := ut.s.read(func(q querier) error {
		var err error
		u, err = getUser(q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// List returns users in ascending ID order.
func (ut *usersTable) List(offset, limit int) ([]any, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}
	if limit == 0 {
		return []any{}, nil
	}
	var users []*types.User
	err := ut.s.read(func(q querier) error {
		var err error
		users, err = listUsers(q, offset, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toAny(users), nil
}

// Update applies a *types.UserPatch. A new password is hashed before the
// write lock is taken; an empty password is rejected.
func (ut *usersTable) Update(id int64, patch any) (any, error) {
	p, ok := patch.(*types.UserPatch)
	if !ok {
		return nil, ut.s.fail(types.ErrInvalidData)
	}
	var hashed types.User
	if p.Password != nil {
		if err := types.ValidatePassword(*p.Password); err != nil {
			return nil, ut.s.fail(err)
		}
		hashed.Password = *p.Password
		if err := ut.hashPassword(&hashed); err != nil {
			return nil, ut.s.fail(err)
		}
	}

	var out *types.User
	err := ut.s.write(func(tx *sql.Tx, now time.Time) error {
		u, err := getUser(tx, id)
		if err != nil {
			return err
		}
		p.ApplyTo(u)
		if p.Password != nil {
			u.Password = ""
			u.PasswordHash = hashed.PasswordHash
		}
		if err := u.Validate(); err != nil {
			return err
		}
		if err := checkUser(tx, u); err != nil {
			return err
		}
		u.UpdatedAt = now
		_, err = tx.Exec(
			"UPDATE users SET username = ?, email = ?, hashed_password = ?, is_active = ?, role = ?, updated_at = ? WHERE id = ?",
			u.Username, u.Email, u.PasswordHash, u.IsActive, u.Role, formatTime(u.UpdatedAt), id,
		)
		if err != nil {
			return fmt.Errorf("updating user %d: %w", id, err)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a user under the configured delete policy.
func (ut *usersTable) Delete(id int64) error {
	return ut.s.write(func(tx *sql.Tx, now time.Time) error {
		if id <= 0 {
			return types.ErrNotFound
		}
		return deleteRow(tx, ut.s.backend.log, ut.s.backend.deletePolicy(), types.UsersTable, id, now)
	})
}
