package types

import "errors"

// Config holds backend selection and parameters for Store.Open.
type Config struct {
	Backend      string `json:"backend" yaml:"backend"`
	DataDir      string `json:"data_dir" yaml:"data_dir"`
	DeletePolicy string `json:"delete_policy" yaml:"delete_policy"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Delete policies. Restrict refuses to delete a row that other rows still
// reference; cascade deletes dependent rows and clears optional references.
const (
	DeleteRestrict = "restrict"
	DeleteCascade  = "cascade"
)

// Config validation errors.
var (
	ErrBackendEmpty        = errors.New("backend must not be empty")
	ErrBackendUnknown      = errors.New("unknown backend")
	ErrDeletePolicyUnknown = errors.New("unknown delete policy")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure. An empty DeletePolicy is valid and means
// DeleteRestrict.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	switch c.DeletePolicy {
	case "", DeleteRestrict, DeleteCascade:
	default:
		return ErrDeletePolicyUnknown
	}
	return nil
}

// GetDeletePolicy returns the effective delete policy.
func (c Config) GetDeletePolicy() string {
	if c.DeletePolicy == "" {
		return DeleteRestrict
	}
	return c.DeletePolicy
}
