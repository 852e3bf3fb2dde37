package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every table to <dir> as JSONL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, flags, func(e *env) error {
				if err := e.store.Export(args[0]); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
				return nil
			})
		},
	}
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Load a JSONL snapshot into an empty store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, flags, func(e *env) error {
				res, err := e.store.Import(args[0])
				if err != nil {
					return err
				}
				for _, name := range types.StandardTableNames {
					printf(cmd.OutOrStdout(), "%-10s loaded %d, skipped %d\n", name, res.Loaded[name], res.Skipped[name])
				}
				return nil
			})
		},
	}
}
