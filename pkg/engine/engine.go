// Package engine runs solves on behalf of the CLI, the HTTP service and the
// MCP server. It owns the optional result cache and emits spans, metrics and
// debug logs around every solve.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/splitdepth/pkg/alg/intervaldp"
	"github.com/Sumatoshi-tech/splitdepth/pkg/alg/lru"
	"github.com/Sumatoshi-tech/splitdepth/pkg/observability"
	"github.com/Sumatoshi-tech/splitdepth/pkg/seqio"
)

const spanSolve = "splitdepth.solve"

// Outcome is the result of one solve together with how it was obtained.
type Outcome struct {
	Result  int64
	Length  int
	Mode    intervaldp.Mode
	Stats   intervaldp.Stats
	Cached  bool
	Elapsed time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithMode selects the evaluator.
func WithMode(mode intervaldp.Mode) Option {
	return func(e *Engine) {
		e.mode = mode
	}
}

// WithMaxLen lowers the accepted sequence length.
func WithMaxLen(n int) Option {
	return func(e *Engine) {
		e.maxLen = n
	}
}

// WithCache enables a result cache holding up to entries outcomes.
// Zero or negative disables caching.
func WithCache(entries int) Option {
	return func(e *Engine) {
		if entries <= 0 {
			e.cache = nil

			return
		}

		e.cache = lru.New[seqio.Digest, Outcome](entries)
	}
}

// WithLogger sets the logger used for per-solve debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTracer sets the tracer used for solve spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// WithMetrics sets the solver metric instruments.
func WithMetrics(metrics *observability.SolverMetrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// Engine is safe for concurrent use. Every call to Solve allocates its own
// Solver, so memo tables are never shared; only finished outcomes are.
type Engine struct {
	mode    intervaldp.Mode
	maxLen  int
	cache   *lru.Cache[seqio.Digest, Outcome]
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.SolverMetrics
}

// New creates an Engine. Without options it solves with the memoized
// evaluator, no cache, no-op tracing and discarded logs.
func New(opts ...Option) *Engine {
	e := &Engine{
		mode:   intervaldp.ModeMemo,
		maxLen: intervaldp.MaxLen,
		logger: slog.New(slog.DiscardHandler),
		tracer: nooptrace.NewTracerProvider().Tracer("splitdepth"),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Mode returns the evaluator the engine uses.
func (e *Engine) Mode() intervaldp.Mode {
	return e.mode
}

// MaxLen returns the longest sequence the engine accepts.
func (e *Engine) MaxLen() int {
	return e.maxLen
}

// CacheStats returns the result cache statistics. ok is false when caching
// is disabled.
func (e *Engine) CacheStats() (stats lru.Stats, ok bool) {
	if e.cache == nil {
		return lru.Stats{}, false
	}

	return e.cache.Stats(), true
}

// ClearCache drops every cached outcome and reports whether a cache exists.
func (e *Engine) ClearCache() bool {
	if e.cache == nil {
		return false
	}

	e.cache.Clear()

	return true
}

// Solve evaluates seq. A cached outcome is returned with Cached set and the
// statistics of the solve that produced it.
func (e *Engine) Solve(ctx context.Context, seq []int64) (Outcome, error) {
	ctx, span := e.tracer.Start(ctx, spanSolve, trace.WithAttributes(
		attribute.Int("sequence.length", len(seq)),
		attribute.String("solver.mode", string(e.mode)),
	))
	defer span.End()

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return Outcome{}, fmt.Errorf("solve: %w", ctxErr)
	}

	var key seqio.Digest

	if e.cache != nil {
		key = seqio.Sum(seq)

		cached, hit := e.cache.Get(key)
		e.metrics.RecordCacheLookup(ctx, hit)
		span.SetAttributes(attribute.Bool("cache.hit", hit))

		if hit {
			cached.Cached = true
			e.record(ctx, cached)

			return cached, nil
		}
	}

	start := time.Now()
	solver := intervaldp.NewSolver(intervaldp.WithMode(e.mode), intervaldp.WithMaxLen(e.maxLen))

	result, err := solver.Solve(seq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return Outcome{}, fmt.Errorf("solve: %w", err)
	}

	outcome := Outcome{
		Result:  result,
		Length:  len(seq),
		Mode:    solver.Mode(),
		Stats:   solver.Stats(),
		Elapsed: time.Since(start),
	}

	span.SetAttributes(
		attribute.Int64("solver.result", outcome.Result),
		attribute.Int64("solver.states", outcome.Stats.States),
	)

	if e.cache != nil {
		e.cache.Put(key, outcome)
	}

	e.record(ctx, outcome)

	return outcome, nil
}

func (e *Engine) record(ctx context.Context, outcome Outcome) {
	e.metrics.RecordSolve(ctx, observability.SolveRecord{
		Mode:   string(outcome.Mode),
		Length: outcome.Length,
		States: outcome.Stats.States,
		Cached: outcome.Cached,
	})

	e.logger.DebugContext(ctx, "solved",
		"length", outcome.Length,
		"result", outcome.Result,
		"mode", string(outcome.Mode),
		"states", outcome.Stats.States,
		"memo_hits", outcome.Stats.Hits,
		"max_depth", outcome.Stats.MaxDepth,
		"cached", outcome.Cached,
		"elapsed", outcome.Elapsed,
	)
}
