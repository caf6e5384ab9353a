package commands

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/splitdepth/pkg/engine"
	"github.com/Sumatoshi-tech/splitdepth/pkg/observability"
	"github.com/Sumatoshi-tech/splitdepth/pkg/render"
)

// SolveCommand holds the flags of the solve command.
type SolveCommand struct {
	app    *App
	format string
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(app *App) *cobra.Command {
	sc := &SolveCommand{app: app}

	cmd := &cobra.Command{
		Use:   "solve [file|-]",
		Short: "Solve one sequence",
		Long: `Read n followed by n integers from a file or standard input and print the
maximal nesting depth. The input is read completely before solving; on any
error nothing is printed on standard output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: sc.run,
	}

	sc.registerFlags(cmd)

	return cmd
}

func (sc *SolveCommand) registerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sc.format, "format", "f", "", "Output format: text, json, yaml, table (default from config)")
}

func (sc *SolveCommand) run(cmd *cobra.Command, args []string) error {
	app := sc.app

	format, err := render.ParseFormat(sc.resolveFormat())
	if err != nil {
		return err
	}

	mode, err := app.solverMode()
	if err != nil {
		return err
	}

	seq, err := readSequence(cmd, args, app.cfg.Solver.MaxLength)
	if err != nil {
		return err
	}

	providers, err := app.initObservability(cmd.ErrOrStderr(), observability.ModeCLI, false)
	if err != nil {
		return err
	}
	defer shutdownObservability(cmd.Context(), providers)

	metrics, err := observability.NewSolverMetrics(providers.Meter)
	if err != nil {
		return err
	}

	eng := engine.New(
		engine.WithMode(mode),
		engine.WithMaxLen(app.cfg.Solver.MaxLength),
		engine.WithLogger(providers.Logger),
		engine.WithTracer(providers.Tracer),
		engine.WithMetrics(metrics),
	)

	outcome, err := eng.Solve(cmd.Context(), seq)
	if err != nil {
		return err
	}

	var buf bytes.Buffer

	err = render.Write(&buf, format, outcome)
	if err != nil {
		return err
	}

	_, err = buf.WriteTo(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

func (sc *SolveCommand) resolveFormat() string {
	if sc.format != "" {
		return sc.format
	}

	return sc.app.cfg.Output.Format
}
