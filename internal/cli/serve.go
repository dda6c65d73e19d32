package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/splitplan/pkg/api"
	"github.com/matzehuels/splitplan/pkg/buildinfo"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plan API over HTTP",
		Long: `Serve the plan API over HTTP.

Routes:
  GET  /healthz
  POST /v1/plans                 {"demand": [54, 18, 24]}
  GET  /v1/plans?limit=n
  GET  /v1/plans/{id}
  GET  /v1/plans/{id}/diagram?format=svg|png|pdf|dot|json|text

Plans are kept in memory unless [store] selects MongoDB.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg := c.config()
	if addr == "" {
		addr = cfg.Server.Addr
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open plan store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			c.Logger.Warn("close plan store", "err", err)
		}
	}()

	c.Logger.Info("starting server", "version", buildinfo.Version, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	srv := api.New(runner, st,
		api.WithLogger(c.Logger),
		api.WithMaxOutputs(cfg.Server.MaxOutputs),
	)
	return srv.ListenAndServe(ctx, api.ServeOptions{
		Addr:            addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
}
