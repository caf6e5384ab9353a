// Package commands implements CLI command handlers for splitdepth.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/splitdepth/pkg/alg/intervaldp"
	"github.com/Sumatoshi-tech/splitdepth/pkg/config"
	"github.com/Sumatoshi-tech/splitdepth/pkg/observability"
	"github.com/Sumatoshi-tech/splitdepth/pkg/render"
	"github.com/Sumatoshi-tech/splitdepth/pkg/seqio"
	"github.com/Sumatoshi-tech/splitdepth/pkg/version"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitInput   = 2
)

// ErrConflictingVerbosity indicates --verbose and --quiet were both given.
var ErrConflictingVerbosity = errors.New("--verbose and --quiet are mutually exclusive")

// Streams are the standard streams a command runs against.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// App holds state shared by every command: global flags and the
// configuration and logger resolved from them before a command runs.
type App struct {
	configPath string
	envFile    string
	mode       string
	verbose    bool
	quiet      bool
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
}

// Execute runs the CLI with args and returns the process exit code. Errors
// are reported on streams.Err; nothing is written to streams.Out on failure.
func Execute(ctx context.Context, args []string, streams Streams) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	err := root.ExecuteContext(ctx)
	if err != nil {
		render.WriteError(streams.Err, err)
	}

	return ExitCode(err)
}

// ExitCode maps an error to the process exit status: input errors exit 2,
// every other failure exits 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, seqio.ErrInput):
		return ExitInput
	default:
		return ExitFailure
	}
}

// NewRootCommand creates the root command. Without a subcommand it reads a
// sequence from standard input and prints the result.
func NewRootCommand() *cobra.Command {
	app := &App{}
	sc := &SolveCommand{app: app}

	root := &cobra.Command{
		Use:   "splitdepth",
		Short: "Maximal nesting depth of bounded recursive splits",
		Long: `splitdepth reads n followed by n integers and prints the maximal nesting
depth of a recursive partition in which every split point is smaller than the
element bounding its interval.

Without a subcommand the sequence is read from standard input.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sc.run(cmd, nil)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&app.configPath, "config", "c", "", "Config file (default: splitdepth.yaml in ., ./config, /etc/splitdepth)")
	pf.StringVar(&app.envFile, "env-file", "", "Dotenv file to load before reading configuration (default: .env if present)")
	pf.StringVarP(&app.mode, "mode", "m", "", "Evaluator: memo, iterative, brute (default from config)")
	pf.BoolVarP(&app.verbose, "verbose", "v", false, "Debug logging")
	pf.BoolVarP(&app.quiet, "quiet", "q", false, "Log errors only")
	pf.BoolVar(&app.noColor, "no-color", false, "Disable colored output")

	sc.registerFlags(root)

	root.AddCommand(
		NewSolveCommand(app),
		NewVerifyCommand(app),
		NewPlotCommand(app),
		NewServeCommand(app),
		NewMCPCommand(app),
		NewVersionCommand(),
	)

	return root
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if a.verbose && a.quiet {
		return ErrConflictingVerbosity
	}

	err := a.loadConfig()
	if err != nil {
		return err
	}

	if a.noColor || !a.cfg.Output.Color {
		color.NoColor = true
	}

	a.logger, err = a.newLogger(cmd.ErrOrStderr(), observability.ModeCLI)

	return err
}

func (a *App) loadConfig() error {
	var envErr error
	if a.envFile != "" {
		envErr = config.LoadDotEnv(a.envFile)
	} else {
		envErr = config.LoadDotEnv()
	}

	if envErr != nil {
		return envErr
	}

	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if a.mode != "" {
		cfg.Solver.Mode = a.mode
	}

	a.cfg = cfg

	return nil
}

// solverMode resolves the evaluator from flags and configuration.
func (a *App) solverMode() (intervaldp.Mode, error) {
	mode, err := intervaldp.ParseMode(a.cfg.Solver.Mode)
	if err != nil {
		return "", fmt.Errorf("solver mode: %w", err)
	}

	return mode, nil
}

// observabilityConfig builds the telemetry settings for the given mode.
// OTLP export is configured through the standard OTEL_EXPORTER_OTLP_*
// variables.
func (a *App) observabilityConfig(w io.Writer, mode observability.AppMode) (observability.Config, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.Environment = os.Getenv("SPLITDEPTH_ENV")
	cfg.Mode = mode
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.LogJSON = a.cfg.Logging.Format == "json"
	cfg.LogWriter = w

	level, err := observability.ParseLevel(a.cfg.Logging.Level)
	if err != nil {
		return cfg, err
	}

	switch {
	case a.verbose:
		level = slog.LevelDebug
	case a.quiet:
		level = slog.LevelError
	}

	cfg.LogLevel = level

	return cfg, nil
}

func (a *App) newLogger(w io.Writer, mode observability.AppMode) (*slog.Logger, error) {
	cfg, err := a.observabilityConfig(w, mode)
	if err != nil {
		return nil, err
	}

	return observability.NewLogger(cfg), nil
}

// initObservability initializes tracing and metrics for a long-running or
// traced command. The caller must call Shutdown on the result.
func (a *App) initObservability(w io.Writer, mode observability.AppMode, prometheus bool) (observability.Providers, error) {
	cfg, err := a.observabilityConfig(w, mode)
	if err != nil {
		return observability.Providers{}, err
	}

	cfg.Prometheus = prometheus

	providers, err := observability.Init(cfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}

func shutdownObservability(ctx context.Context, providers observability.Providers) {
	err := providers.Shutdown(context.WithoutCancel(ctx))
	if err != nil {
		providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}
