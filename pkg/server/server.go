// Package server exposes the solver over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/splitdepth/pkg/alg/intervaldp"
	"github.com/Sumatoshi-tech/splitdepth/pkg/alg/lru"
	"github.com/Sumatoshi-tech/splitdepth/pkg/engine"
	"github.com/Sumatoshi-tech/splitdepth/pkg/observability"
	"github.com/Sumatoshi-tech/splitdepth/pkg/version"
)

// Route paths.
const (
	PathSolve   = "/v1/solve"
	PathCache   = "/v1/cache"
	PathHealth  = "/healthz"
	PathReady   = "/readyz"
	PathMetrics = "/metrics"
)

const (
	maxBodyBytes    = 1 << 20
	defaultTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second

	opSolve      = "http.solve"
	opCache      = "http.cache"
	opCacheClear = "http.cache.clear"

	readyCheckAccepting = "accepting_requests"
)

var errDraining = errors.New("server is shutting down")

// ErrCacheDisabled is reported by the cache endpoints when the engine runs
// without a result cache.
var ErrCacheDisabled = errors.New("result cache is disabled")

// Config holds listener settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTracer sets the tracer used by the request middleware.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithREDMetrics sets the per-route request metrics.
func WithREDMetrics(red *observability.REDMetrics) Option {
	return func(s *Server) {
		s.red = red
	}
}

// WithMetricsHandler mounts handler at /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) {
		s.metricsHandler = handler
	}
}

// Server is the HTTP front end of an Engine.
type Server struct {
	cfg            Config
	engine         *engine.Engine
	validator      *RequestValidator
	logger         *slog.Logger
	tracer         trace.Tracer
	red            *observability.REDMetrics
	metricsHandler http.Handler
	draining       atomic.Bool
	handler        http.Handler
}

// SolveRequest is the body of POST /v1/solve.
type SolveRequest struct {
	Sequence []int64 `json:"sequence"`
}

// SolveResponse is the body of a successful solve.
type SolveResponse struct {
	ID     string           `json:"id"`
	Result int64            `json:"result"`
	Length int              `json:"length"`
	Mode   string           `json:"mode"`
	Cached bool             `json:"cached"`
	Stats  intervaldp.Stats `json:"stats"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	ID      string   `json:"id,omitempty"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// New builds a Server around eng.
func New(cfg Config, eng *engine.Engine, opts ...Option) (*Server, error) {
	validator, err := NewRequestValidator()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		engine:    eng,
		validator: validator,
		logger:    slog.New(slog.DiscardHandler),
		tracer:    nooptrace.NewTracerProvider().Tracer("splitdepth"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.handler = observability.HTTPMiddleware(s.tracer, s.routes())

	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.Handle(PathSolve, s.instrument(opSolve, http.HandlerFunc(s.handleSolve))).Methods(http.MethodPost)
	r.Handle(PathCache, s.instrument(opCache, http.HandlerFunc(s.handleCache))).Methods(http.MethodGet)
	r.Handle(PathCache, s.instrument(opCacheClear, http.HandlerFunc(s.handleCacheClear))).Methods(http.MethodDelete)
	r.Handle(PathHealth, observability.HealthHandler(version.Version)).Methods(http.MethodGet)
	r.Handle(PathReady, observability.ReadyHandler(version.Version, observability.ReadyCheck{
		Name:  readyCheckAccepting,
		Check: s.readyCheck,
	})).Methods(http.MethodGet)

	if s.metricsHandler != nil {
		r.Handle(PathMetrics, s.metricsHandler).Methods(http.MethodGet)
	}

	return r
}

// Handler returns the root handler with request IDs, tracing and logging.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on cfg.Addr and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then drains
// in-flight requests. Readiness reports unavailable while draining.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  orDefault(s.cfg.ReadTimeout),
		WriteTimeout: orDefault(s.cfg.WriteTimeout),
		IdleTimeout:  orDefault(s.cfg.IdleTimeout),
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	serveErr := make(chan error, 1)

	go func() {
		s.logger.InfoContext(ctx, "http server listening", "addr", ln.Addr().String())
		serveErr <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.draining.Store(true)
	s.logger.InfoContext(ctx, "http server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	<-serveErr

	return nil
}

func (s *Server) readyCheck(context.Context) error {
	if s.draining.Load() {
		return errDraining
	}

	return nil
}

func (s *Server) handleSolve(rw http.ResponseWriter, hr *http.Request) {
	ctx := hr.Context()
	requestID := observability.RequestID(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(rw, hr.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(rw, http.StatusRequestEntityTooLarge, requestID, err, nil)

			return
		}

		s.writeError(rw, http.StatusBadRequest, requestID, fmt.Errorf("read body: %w", err), nil)

		return
	}

	details, err := s.validator.Validate(body)
	if err != nil {
		s.writeError(rw, http.StatusBadRequest, requestID, err, details)

		return
	}

	var req SolveRequest

	err = json.Unmarshal(body, &req)
	if err != nil {
		s.writeError(rw, http.StatusBadRequest, requestID, fmt.Errorf("%w: %w", ErrInvalidRequest, err), nil)

		return
	}

	outcome, err := s.engine.Solve(ctx, req.Sequence)
	if err != nil {
		s.writeError(rw, statusForSolveError(err), requestID, err, nil)

		return
	}

	writeJSON(rw, http.StatusOK, SolveResponse{
		ID:     requestID,
		Result: outcome.Result,
		Length: outcome.Length,
		Mode:   string(outcome.Mode),
		Cached: outcome.Cached,
		Stats:  outcome.Stats,
	})
}

// CacheResponse is the body of GET and DELETE /v1/cache.
type CacheResponse struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Entries   int     `json:"entries"`
	Max       int     `json:"max_entries"`
	HitRate   float64 `json:"hit_rate"`
}

func (s *Server) handleCache(rw http.ResponseWriter, hr *http.Request) {
	stats, ok := s.engine.CacheStats()
	if !ok {
		s.writeError(rw, http.StatusNotFound, observability.RequestID(hr.Context()), ErrCacheDisabled, nil)

		return
	}

	writeJSON(rw, http.StatusOK, newCacheResponse(stats))
}

// handleCacheClear drops every cached outcome. Counters survive, so the
// response still reports the lifetime hit rate.
func (s *Server) handleCacheClear(rw http.ResponseWriter, hr *http.Request) {
	if !s.engine.ClearCache() {
		s.writeError(rw, http.StatusNotFound, observability.RequestID(hr.Context()), ErrCacheDisabled, nil)

		return
	}

	stats, _ := s.engine.CacheStats()

	s.logger.InfoContext(hr.Context(), "result cache cleared", "evictions", stats.Evictions)

	writeJSON(rw, http.StatusOK, newCacheResponse(stats))
}

func newCacheResponse(stats lru.Stats) CacheResponse {
	return CacheResponse{
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		Evictions: stats.Evictions,
		Entries:   stats.Entries,
		Max:       stats.MaxEntries,
		HitRate:   stats.HitRate(),
	}
}

func statusForSolveError(err error) int {
	switch {
	case errors.Is(err, intervaldp.ErrTooLong), errors.Is(err, intervaldp.ErrBruteForceTooLong):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(rw http.ResponseWriter, status int, requestID string, err error, details []string) {
	writeJSON(rw, status, ErrorResponse{ID: requestID, Error: err.Error(), Details: details})
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	_ = json.NewEncoder(rw).Encode(v)
}

func orDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}

	return d
}
