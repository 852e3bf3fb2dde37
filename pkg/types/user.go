package types

import "time"

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// User is an account that creates and is assigned work.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=100"`

	// Password is the plaintext password supplied on create. The store hashes
	// it into PasswordHash and clears it; it is never persisted.
	Password string `json:"password,omitempty" validate:"-"`

	// PasswordHash is the stored credential produced by the store's Hasher.
	PasswordHash string `json:"-" validate:"max=200"`

	IsActive  bool      `json:"is_active"`
	Role      string    `json:"role" validate:"required,oneof=admin user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks field formats and required fields.
// Returns an error wrapping ErrValidation.
func (u *User) Validate() error {
	if err := validateStruct(u); err != nil {
		return err
	}
	if u.Password == "" && u.PasswordHash == "" {
		return invalid("password is required")
	}
	return ValidatePassword(u.Password)
}

// ValidatePassword rejects plaintext passwords bcrypt cannot hash.
func ValidatePassword(password string) error {
	if len(password) > MaxPasswordBytes {
		return invalid("password must be at most %d bytes", MaxPasswordBytes)
	}
	return nil
}

// UserPatch names the mutable user fields. Nil fields are left unchanged.
type UserPatch struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsActive *bool   `json:"is_active"`
	Role     *string `json:"role"`
}

// ApplyTo merges the patch into u. A new password is placed in u.Password for
// the store to hash.
func (p *UserPatch) ApplyTo(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
		if u.Password == "" {
			u.PasswordHash = ""
		}
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}
