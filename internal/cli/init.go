package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pmstore/internal/seed"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	var withSeed bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize pmstore storage",
		Long: "Create the configuration and data directories, write a default config.yaml,\n" +
			"and create the database schema. With --seed, load the starter dataset\n" +
			"when the store has no users yet.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, flags, func(e *env) error {
				if withSeed {
					res, err := seed.LoadIfEmpty(e.store, e.seedOptions())
					if err != nil {
						return err
					}
					if res == nil {
						printf(cmd.OutOrStdout(), "Store already has users; seed skipped\n")
					} else {
						printf(cmd.OutOrStdout(), "Seeded admin user %d and test user %d\n", res.AdminID, res.UserID)
					}
				}
				printf(cmd.OutOrStdout(), "pmstore initialized at %s\n", e.dataDir)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withSeed, "seed", false, "load the starter dataset into an empty store")
	return cmd
}
