package cli

import (
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/httpapi"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the listing API over HTTP",
		Long: `Serve the listing API over HTTP until SIGINT or SIGTERM.

Examples:
  rollcall serve
  rollcall serve --addr 127.0.0.1:9000 --driver postgres --database-url postgres://localhost/rollcall`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				rootOpts.Config.HTTPAddr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, closeFn, err := rootOpts.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			ln, err := net.Listen("tcp", rootOpts.Config.HTTPAddr)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to listen", err)
			}

			router := httpapi.NewRouter(svc, rootOpts.Logger)
			if err := httpapi.Serve(ctx, ln, router, rootOpts.Config.ShutdownTimeout, rootOpts.Logger); err != nil {
				return WrapExitError(ExitFailure, "server stopped with error", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (env ROLLCALL_HTTP_ADDR, default :8080)")
	return cmd
}
