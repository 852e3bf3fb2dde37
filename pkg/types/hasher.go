package types

// Hasher turns a plaintext password into a stored credential. The store calls
// it whenever a user is created or a user patch carries a password.
type Hasher interface {
	Hash(password string) (string, error)
}

// HasherFunc adapts a function to the Hasher interface.
type HasherFunc func(password string) (string, error)

// Hash calls f(password).
func (f HasherFunc) Hash(password string) (string, error) {
	return f(password)
}
