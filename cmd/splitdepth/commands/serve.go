package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/splitdepth/pkg/engine"
	"github.com/Sumatoshi-tech/splitdepth/pkg/observability"
	"github.com/Sumatoshi-tech/splitdepth/pkg/server"
)

// ServeCommand holds the flags of the serve command.
type ServeCommand struct {
	app  *App
	addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(app *App) *cobra.Command {
	sc := &ServeCommand{app: app}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		Long: `Start an HTTP service exposing:
  POST /v1/solve   {"sequence":[...]} -> {"id","result","length","mode","cached","stats"}
  GET  /v1/cache   result cache statistics (404 when cache_entries is 0)
  DELETE /v1/cache drop cached results
  GET  /healthz    liveness
  GET  /readyz     readiness
  GET  /metrics    Prometheus metrics

The service stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: sc.run,
	}

	cmd.Flags().StringVar(&sc.addr, "addr", "", "Listen address host:port (default from config)")

	return cmd
}

func (sc *ServeCommand) run(cmd *cobra.Command, _ []string) error {
	app := sc.app

	mode, err := app.solverMode()
	if err != nil {
		return err
	}

	providers, err := app.initObservability(cmd.ErrOrStderr(), observability.ModeServe, true)
	if err != nil {
		return err
	}
	defer shutdownObservability(cmd.Context(), providers)

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return err
	}

	solverMetrics, err := observability.NewSolverMetrics(providers.Meter)
	if err != nil {
		return err
	}

	eng := engine.New(
		engine.WithMode(mode),
		engine.WithMaxLen(app.cfg.Solver.MaxLength),
		engine.WithCache(app.cfg.Server.CacheEntries),
		engine.WithLogger(providers.Logger),
		engine.WithTracer(providers.Tracer),
		engine.WithMetrics(solverMetrics),
	)

	addr := sc.addr
	if addr == "" {
		addr = app.cfg.Server.Addr()
	}

	srv, err := server.New(server.Config{
		Addr:         addr,
		ReadTimeout:  app.cfg.Server.ReadTimeout,
		WriteTimeout: app.cfg.Server.WriteTimeout,
		IdleTimeout:  app.cfg.Server.IdleTimeout,
	}, eng,
		server.WithLogger(providers.Logger),
		server.WithTracer(providers.Tracer),
		server.WithREDMetrics(red),
		server.WithMetricsHandler(providers.MetricsHandler),
	)
	if err != nil {
		return err
	}

	return srv.Run(cmd.Context())
}
