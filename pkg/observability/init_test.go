package observability_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/splitdepth/pkg/observability"
)

func TestInit_NoopWithoutExporters(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.LogWriter = io.Discard

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)
	assert.Nil(t, providers.MetricsHandler)
	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_PrometheusServesRecordedMetrics(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.LogWriter = io.Discard
	cfg.Prometheus = true

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	require.NotNil(t, providers.MetricsHandler)

	sm, err := observability.NewSolverMetrics(providers.Meter)
	require.NoError(t, err)

	sm.RecordCacheLookup(context.Background(), true)

	rec := httptest.NewRecorder()
	providers.MetricsHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "splitdepth_cache_hits")
}

func TestNewPrometheusReader_IndependentRegistries(t *testing.T) {
	t.Parallel()

	_, first, err := observability.NewPrometheusReader()
	require.NoError(t, err)

	_, second, err := observability.NewPrometheusReader()
	require.NoError(t, err)

	assert.NotNil(t, first)
	assert.NotNil(t, second)
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "api-key=abc", want: map[string]string{"api-key": "abc"}},
		{
			name: "multiple with spaces",
			raw:  " a = 1 , b=2 ",
			want: map[string]string{"a": "1", "b": "2"},
		},
		{name: "malformed only", raw: "novalue", want: nil},
		{name: "mixed", raw: "novalue,k=v", want: map[string]string{"k": "v"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, observability.ParseOTLPHeaders(tt.raw))
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want slog.Level
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "INFO", want: slog.LevelInfo},
		{name: " warn ", want: slog.LevelWarn},
		{name: "error", want: slog.LevelError},
	}

	for _, tt := range tests {
		got, err := observability.ParseLevel(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	_, err := observability.ParseLevel("chatty")
	require.ErrorIs(t, err, observability.ErrUnknownLevel)
}
