package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pmstore/internal/httpapi"
	"github.com/mesh-intelligence/pmstore/internal/seed"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the record store over HTTP",
		Long:  "Serve every table under /api/:table until interrupted.\nWith seed.on_start set, the starter dataset is loaded into an empty store first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, flags, func(e *env) error {
				if e.cfg.Seed.OnStart {
					res, err := seed.LoadIfEmpty(e.store, e.seedOptions())
					if err != nil {
						return err
					}
					if res != nil {
						e.log.WithField("admin_id", res.AdminID).Info("seeded starter dataset")
					}
				}

				if addr == "" {
					addr = e.cfg.Server.Address()
				}
				httpapi.Version = Version
				router := httpapi.NewRouter(e.store, e.log, e.cfg.Server)

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return httpapi.Serve(ctx, addr, router, e.log)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.host and server.port)")
	return cmd
}
