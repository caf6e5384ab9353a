package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricSolvesTotal      = "splitdepth.solver.solves.total"
	metricSequenceLength   = "splitdepth.solver.sequence.length"
	metricStatesEvaluated  = "splitdepth.solver.states"
	metricCacheHitsTotal   = "splitdepth.cache.hits.total"
	metricCacheMissesTotal = "splitdepth.cache.misses.total"

	attrCached = "cached"
)

var (
	lengthBucketBoundaries = []float64{0, 1, 5, 10, 25, 50, 100, 150, 200, 250, 300}
	statesBucketBoundaries = []float64{0, 10, 100, 1_000, 10_000, 50_000, 100_000, 200_000}
)

// SolverMetrics holds OTel instruments describing solver workloads.
type SolverMetrics struct {
	solvesTotal    metric.Int64Counter
	sequenceLength metric.Int64Histogram
	states         metric.Int64Histogram
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
}

// SolveRecord describes one completed solve, decoupled from solver types.
type SolveRecord struct {
	Mode   string
	Length int
	States int64
	Cached bool
}

// NewSolverMetrics creates solver metric instruments from the given meter.
func NewSolverMetrics(mt metric.Meter) (*SolverMetrics, error) {
	solves, err := mt.Int64Counter(metricSolvesTotal,
		metric.WithDescription("Total solves by mode"),
		metric.WithUnit("{solve}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSolvesTotal, err)
	}

	length, err := mt.Int64Histogram(metricSequenceLength,
		metric.WithDescription("Length of solved sequences"),
		metric.WithUnit("{element}"),
		metric.WithExplicitBucketBoundaries(lengthBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSequenceLength, err)
	}

	states, err := mt.Int64Histogram(metricStatesEvaluated,
		metric.WithDescription("Interval states evaluated per solve"),
		metric.WithUnit("{state}"),
		metric.WithExplicitBucketBoundaries(statesBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStatesEvaluated, err)
	}

	hits, err := mt.Int64Counter(metricCacheHitsTotal,
		metric.WithDescription("Result cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheHitsTotal, err)
	}

	misses, err := mt.Int64Counter(metricCacheMissesTotal,
		metric.WithDescription("Result cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheMissesTotal, err)
	}

	return &SolverMetrics{
		solvesTotal:    solves,
		sequenceLength: length,
		states:         states,
		cacheHits:      hits,
		cacheMisses:    misses,
	}, nil
}

// RecordSolve records a completed solve. Safe to call on a nil receiver.
func (sm *SolverMetrics) RecordSolve(ctx context.Context, rec SolveRecord) {
	if sm == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMode, rec.Mode),
		attribute.Bool(attrCached, rec.Cached),
	)

	sm.solvesTotal.Add(ctx, 1, attrs)
	sm.sequenceLength.Record(ctx, int64(rec.Length), attrs)

	if !rec.Cached {
		sm.states.Record(ctx, rec.States, metric.WithAttributes(attribute.String(attrMode, rec.Mode)))
	}
}

// RecordCacheLookup counts one result cache lookup. Safe to call on a nil
// receiver.
func (sm *SolverMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if sm == nil {
		return
	}

	if hit {
		sm.cacheHits.Add(ctx, 1)

		return
	}

	sm.cacheMisses.Add(ctx, 1)
}
