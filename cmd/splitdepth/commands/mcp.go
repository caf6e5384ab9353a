package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/splitdepth/pkg/engine"
	"github.com/Sumatoshi-tech/splitdepth/pkg/mcp"
	"github.com/Sumatoshi-tech/splitdepth/pkg/observability"
)

const mcpCacheEntries = 256

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

Tools:
  - splitdepth_solve: maximal nesting depth of a sequence
  - splitdepth_verify: cross-check the evaluators on a sequence`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := app.solverMode()
			if err != nil {
				return err
			}

			providers, err := app.initObservability(cmd.ErrOrStderr(), observability.ModeMCP, false)
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
				engine.WithCache(mcpCacheEntries),
				engine.WithLogger(providers.Logger),
				engine.WithTracer(providers.Tracer),
				engine.WithMetrics(solverMetrics),
			)

			srv := mcp.NewServer(mcp.ServerDeps{
				Engine:  eng,
				Logger:  providers.Logger,
				Metrics: red,
				Tracer:  providers.Tracer,
			})

			return srv.Run(cmd.Context())
		},
	}
}
