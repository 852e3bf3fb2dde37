package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pmstore/internal/seed"
)

func newSeedCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the starter dataset",
		Long:  "Create the admin and test users, a project, a task, a document, and a comment.\nFails without changes if the store was already seeded.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, flags, func(e *env) error {
				res, err := seed.Load(e.store, e.seedOptions())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}
