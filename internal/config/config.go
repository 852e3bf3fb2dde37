// Package config loads pmstore settings from config.yaml and PMSTORE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// EnvPrefix prefixes every environment override, e.g. PMSTORE_SERVER_PORT.
	EnvPrefix = "PMSTORE"
)

// Config keys.
const (
	KeyBackend           = "backend"
	KeyDataDir           = "data_dir"
	KeyDeletePolicy      = "delete_policy"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
	KeyServerHost        = "server.host"
	KeyServerPort        = "server.port"
	KeyServerProduction  = "server.production_mode"
	KeyCORSOrigins       = "server.cors.origins"
	KeyCORSMethods       = "server.cors.allow_methods"
	KeyCORSHeaders       = "server.cors.allow_headers"
	KeyCORSCredentials   = "server.cors.allow_credentials"
	KeySeedOnStart       = "seed.on_start"
	KeySeedAdminPassword = "seed.admin_password"
	KeySeedUserPassword  = "seed.user_password"
	KeyAuthBcryptCost    = "auth.bcrypt_cost"
)

// Default values.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8000
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# pmstore configuration
# Every key can be overridden with a PMSTORE_ environment variable,
# e.g. PMSTORE_SERVER_PORT=9000 or PMSTORE_LOG_LEVEL=debug.

backend: sqlite

# Data directory (optional; overridable by --data-dir or PMSTORE_DATA_DIR)
# data_dir:

# restrict refuses to delete referenced rows; cascade removes dependents.
delete_policy: restrict

log:
  level: info
  format: text

server:
  host: 127.0.0.1
  port: 8000
  production_mode: false
  # Browser clients on other origins. "*" allows any origin, method, or header.
  cors:
    origins: ["*"]
    allow_methods: ["*"]
    allow_headers: ["*"]
    allow_credentials: true

seed:
  on_start: false
  admin_password: admin123
  user_password: test123

auth:
  bcrypt_cost: 10
`

// Config is the full application configuration.
type Config struct {
	Backend      string       `mapstructure:"backend"`
	DataDir      string       `mapstructure:"data_dir"`
	DeletePolicy string       `mapstructure:"delete_policy"`
	Log          LogConfig    `mapstructure:"log"`
	Server       ServerConfig `mapstructure:"server"`
	Seed         SeedConfig   `mapstructure:"seed"`
	Auth         AuthConfig   `mapstructure:"auth"`
}

// LogConfig selects the logger level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Host           string     `mapstructure:"host"`
	Port           int        `mapstructure:"port"`
	ProductionMode bool       `mapstructure:"production_mode"`
	CORS           CORSConfig `mapstructure:"cors"`
}

// CORSConfig lists what cross-origin browser requests may use.
type CORSConfig struct {
	Origins          []string `mapstructure:"origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// Address returns host:port for the listener.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SeedConfig controls the starter dataset.
type SeedConfig struct {
	OnStart       bool   `mapstructure:"on_start"`
	AdminPassword string `mapstructure:"admin_password"`
	UserPassword  string `mapstructure:"user_password"`
}

// AuthConfig controls credential hashing.
type AuthConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// StoreConfig returns the backend configuration for Store.Open using dataDir.
func (c *Config) StoreConfig(dataDir string) types.Config {
	return types.Config{
		Backend:      c.Backend,
		DataDir:      dataDir,
		DeletePolicy: c.DeletePolicy,
	}
}

// Configuration errors.
var (
	ErrInvalidPort      = errors.New("server.port must be between 1 and 65535")
	ErrInvalidLogFormat = errors.New("log.format must be json or text")
	ErrInvalidCost      = errors.New("auth.bcrypt_cost must be between 4 and 31")
)

// Load reads config.yaml from configDir, creating the directory and a default
// file on first run, and applies PMSTORE_* environment overrides. A missing
// config file is not an error.
func Load(configDir string) (*Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so environment overrides apply even when
// config.yaml omits it.
func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyBackend, types.BackendSQLite)
	v.SetDefault(KeyDataDir, "")
	v.SetDefault(KeyDeletePolicy, types.DeleteRestrict)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyServerHost, DefaultHost)
	v.SetDefault(KeyServerPort, DefaultPort)
	v.SetDefault(KeyServerProduction, false)
	v.SetDefault(KeyCORSOrigins, []string{"*"})
	v.SetDefault(KeyCORSMethods, []string{"*"})
	v.SetDefault(KeyCORSHeaders, []string{"*"})
	v.SetDefault(KeyCORSCredentials, true)
	v.SetDefault(KeySeedOnStart, false)
	v.SetDefault(KeySeedAdminPassword, "admin123")
	v.SetDefault(KeySeedUserPassword, "test123")
	v.SetDefault(KeyAuthBcryptCost, 10)
}

// Validate checks values that the store and server cannot default.
func (c *Config) Validate() error {
	if err := c.StoreConfig("").Validate(); err != nil {
		return fmt.Errorf("invalid store config: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}
	if c.Auth.BcryptCost != 0 && (c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31) {
		return fmt.Errorf("%w: %d", ErrInvalidCost, c.Auth.BcryptCost)
	}
	return nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in configDir.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
