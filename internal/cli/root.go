// Package cli implements the pmstore command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pmstore/internal/seed"
	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// Version is the pmstore release, overridden at build time with -ldflags.
var Version = "0.1.0"

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
}

// NewRootCmd creates the top-level "pmstore" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "pmstore",
		Short: "A project management record store",
		Long: "pmstore keeps users, projects, tasks, documents, and comments in a\n" +
			"SQLite database with enforced references, and serves them over HTTP.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (env PMSTORE_CONFIG_DIR)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (env PMSTORE_DATA_DIR)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(flags))
	root.AddCommand(newSeedCmd(flags))
	root.AddCommand(newGetCmd(flags))
	root.AddCommand(newListCmd(flags))
	root.AddCommand(newCreateCmd(flags))
	root.AddCommand(newUpdateCmd(flags))
	root.AddCommand(newDeleteCmd(flags))
	root.AddCommand(newExportCmd(flags))
	root.AddCommand(newImportCmd(flags))
	root.AddCommand(newServeCmd(flags))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode separates bad input from system failures.
func exitCode(err error) int {
	var seedErr *seed.Error
	switch {
	case errors.As(err, &seedErr),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrTableNotFound),
		errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrDanglingReference),
		errors.Is(err, types.ErrInvalidReference),
		errors.Is(err, types.ErrReferenced),
		errors.Is(err, types.ErrStoreNotEmpty),
		errors.Is(err, errUsage):
		return exitUserError
	default:
		return exitSysError
	}
}

// errUsage marks malformed command arguments.
var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// printf writes to w and ignores the error, as terminal output does.
func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
