package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pmstore/internal/auth"
	"github.com/mesh-intelligence/pmstore/internal/config"
	"github.com/mesh-intelligence/pmstore/internal/logging"
	"github.com/mesh-intelligence/pmstore/internal/paths"
	"github.com/mesh-intelligence/pmstore/internal/seed"
	"github.com/mesh-intelligence/pmstore/internal/sqlite"
)

// env is the resolved runtime for one command.
type env struct {
	cfg     *config.Config
	dataDir string
	log     *logrus.Logger
	store   *sqlite.Backend
}

// loadEnv resolves directories, loads config.yaml, and builds the logger.
// Logs go to stderr so stdout carries only command output.
func loadEnv(cmd *cobra.Command, flags *rootFlags) (*env, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &env{cfg: cfg, dataDir: dataDir, log: log}, nil
}

// open opens the store described by e.
func (e *env) open() error {
	e.store = sqlite.NewBackend(
		sqlite.WithHasher(auth.NewBcryptHasher(e.cfg.Auth.BcryptCost)),
		sqlite.WithLogger(e.log),
	)
	if err := e.store.Open(e.cfg.StoreConfig(e.dataDir)); err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	return nil
}

// seedOptions returns the configured seed credentials.
func (e *env) seedOptions() seed.Options {
	return seed.Options{
		AdminPassword: e.cfg.Seed.AdminPassword,
		UserPassword:  e.cfg.Seed.UserPassword,
	}
}

// withStore runs fn against an open store and closes it afterwards.
func withStore(cmd *cobra.Command, flags *rootFlags, fn func(e *env) error) error {
	e, err := loadEnv(cmd, flags)
	if err != nil {
		return err
	}
	if err := e.open(); err != nil {
		return err
	}
	defer e.store.Close()
	return fn(e)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
