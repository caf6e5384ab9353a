package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/splitdepth/pkg/alg/intervaldp"
	"github.com/Sumatoshi-tech/splitdepth/pkg/render"
)

const defaultPlotOutput = "splitdepth.html"

// PlotCommand holds the flags of the plot command.
type PlotCommand struct {
	app    *App
	output string
}

// NewPlotCommand creates the plot command.
func NewPlotCommand(app *App) *cobra.Command {
	pc := &PlotCommand{app: app}

	cmd := &cobra.Command{
		Use:   "plot [file|-]",
		Short: "Render the memo table of one sequence as an HTML heatmap",
		Args:  cobra.MaximumNArgs(1),
		RunE:  pc.run,
	}

	cmd.Flags().StringVarP(&pc.output, "output", "o", defaultPlotOutput, "Output HTML file, - for standard output")

	return cmd
}

func (pc *PlotCommand) run(cmd *cobra.Command, args []string) error {
	mode, err := pc.app.solverMode()
	if err != nil {
		return err
	}

	// Brute force keeps no memo table.
	if mode == intervaldp.ModeBruteForce {
		mode = intervaldp.ModeMemo
	}

	seq, err := readSequence(cmd, args, pc.app.cfg.Solver.MaxLength)
	if err != nil {
		return err
	}

	solver := intervaldp.NewSolver(intervaldp.WithMode(mode))

	result, err := solver.Solve(seq)
	if err != nil {
		return err
	}

	var buf bytes.Buffer

	err = render.WritePlot(&buf, seq, solver.Table())
	if err != nil {
		return err
	}

	if pc.output == stdioArg {
		_, err = buf.WriteTo(cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("write plot: %w", err)
		}

		return nil
	}

	err = os.WriteFile(pc.output, buf.Bytes(), 0o644)
	if err != nil {
		return fmt.Errorf("write plot: %w", err)
	}

	pc.app.logger.InfoContext(cmd.Context(), "plot written",
		"path", pc.output,
		"result", result,
		"states", solver.Table().Computed(),
	)

	return nil
}
