package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rshade/peoplegrid/internal/server"
)

// newServeCmd creates the HTTP server command.
func newServeCmd(app *appState) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the people queries over HTTP",
		Long: `Serves JSON endpoints backed by the same query cache as the other commands:

  GET    /persons?page=&results=&seed=
  GET    /persons/all?minAge=&maxAge=&gender=
  GET    /persons/gender/{gender}
  GET    /filters     PATCH /filters     DELETE /filters
  DELETE /cache
  GET    /healthz

Identical requests that arrive together share one upstream call.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = app.cfg.Server.Addr
			}

			svc, err := app.newServices()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ready := make(chan string, 1)
			go func() {
				if bound, ok := <-ready; ok {
					cmd.Printf("Listening on http://%s\n", bound)
				}
			}()

			srv := server.New(svc.queries, svc.client, svc.filters, svc.logger)
			return srv.ListenAndServe(ctx, addr, ready)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	return cmd
}
