// Package paths locates the pmstore config directory, which holds
// config.yaml, and the data directory, which holds pmstore.db and the JSONL
// snapshots.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "pmstore"

// Directory overrides, checked after the command-line flags.
const (
	EnvConfigDir = "PMSTORE_CONFIG_DIR"
	EnvDataDir   = "PMSTORE_DATA_DIR"
)

// platformDir is swapped out by tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir is where config.yaml lives when no override is given.
// Linux follows XDG_CONFIG_HOME, falling back to ~/.config/pmstore. Other
// platforms use os.UserConfigDir()/pmstore.
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	return userDir()
}

// DefaultDataDir is where the database lives when neither flag, env, nor
// data_dir in config.yaml names one. Linux follows XDG_DATA_HOME, falling
// back to ~/.local/share/pmstore. Other platforms put a data subdirectory
// under the config directory so the database never sits beside config.yaml.
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", ".local", "share")
	}
	dir, err := userDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// ResolveConfigDir picks the config directory: flag, then PMSTORE_CONFIG_DIR,
// then DefaultConfigDir. Explicit values are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstSet(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the data directory: flag, then PMSTORE_DATA_DIR, then
// data_dir from config.yaml, then DefaultDataDir. Explicit values are made
// absolute.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir := firstSet(flag, os.Getenv(EnvDataDir), configValue); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultDataDir()
}

// xdgDir returns $env/pmstore, or ~/<fallback...>/pmstore when env is unset.
func xdgDir(env string, fallback ...string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appDirName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, appDirName)...), nil
}

func userDir() (string, error) {
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName), nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
