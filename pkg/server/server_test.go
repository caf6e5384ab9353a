package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/splitdepth/pkg/engine"
	"github.com/Sumatoshi-tech/splitdepth/pkg/observability"
	"github.com/Sumatoshi-tech/splitdepth/pkg/server"
	"github.com/Sumatoshi-tech/splitdepth/pkg/version"
)

const testCacheEntries = 16

func newTestServer(t *testing.T, opts ...server.Option) *server.Server {
	t.Helper()

	srv, err := server.New(server.Config{}, engine.New(engine.WithCache(testCacheEntries)), opts...)
	require.NoError(t, err)

	return srv
}

func post(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, server.PathSolve, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestSolve_OK(t *testing.T) {
	t.Parallel()

	rec := post(t, newTestServer(t).Handler(), `{"sequence":[5,1,4,2,3]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.SolveResponse

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp.Result)
	assert.Equal(t, 5, resp.Length)
	assert.Equal(t, "memo", resp.Mode)
	assert.False(t, resp.Cached)
	assert.Positive(t, resp.Stats.States)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, resp.ID, rec.Header().Get(observability.RequestIDHeader))
}

func TestSolve_EmptySequence(t *testing.T) {
	t.Parallel()

	rec := post(t, newTestServer(t).Handler(), `{"sequence":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.SolveResponse

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.Result)
}

func TestSolve_SecondRequestIsCached(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t).Handler()

	first := post(t, handler, `{"sequence":[1,2,3]}`)
	second := post(t, handler, `{"sequence":[1,2,3]}`)

	var resp server.SolveResponse

	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, first.Code)
	assert.True(t, resp.Cached)
	assert.Equal(t, int64(3), resp.Result)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.PathCache, http.NoBody))

	var cache server.CacheResponse

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cache))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), cache.Hits)
	assert.Equal(t, int64(1), cache.Misses)
	assert.Equal(t, testCacheEntries, cache.Max)
}

func getCache(t *testing.T, handler http.Handler, method string) (*httptest.ResponseRecorder, server.CacheResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, server.PathCache, http.NoBody))

	var cache server.CacheResponse

	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cache))
	}

	return rec, cache
}

func TestCache_Disabled(t *testing.T) {
	t.Parallel()

	srv, err := server.New(server.Config{}, engine.New())
	require.NoError(t, err)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec, _ := getCache(t, srv.Handler(), method)
		assert.Equal(t, http.StatusNotFound, rec.Code, method)

		var resp server.ErrorResponse

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, server.ErrCacheDisabled.Error(), resp.Error)
	}
}

func TestCache_ReportsEvictions(t *testing.T) {
	t.Parallel()

	srv, err := server.New(server.Config{}, engine.New(engine.WithCache(2)))
	require.NoError(t, err)

	handler := srv.Handler()

	for _, body := range []string{`{"sequence":[1]}`, `{"sequence":[1,2]}`, `{"sequence":[1,2,3]}`} {
		require.Equal(t, http.StatusOK, post(t, handler, body).Code)
	}

	rec, cache := getCache(t, handler, http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), cache.Evictions)
	assert.Equal(t, 2, cache.Entries)
	assert.Equal(t, 2, cache.Max)
}

func TestCache_Clear(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t).Handler()

	require.Equal(t, http.StatusOK, post(t, handler, `{"sequence":[3,1,2]}`).Code)

	rec, cache := getCache(t, handler, http.MethodDelete)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, cache.Entries)
	assert.Equal(t, int64(1), cache.Misses)

	var resp server.SolveResponse

	require.NoError(t, json.Unmarshal(post(t, handler, `{"sequence":[3,1,2]}`).Body.Bytes(), &resp))
	assert.False(t, resp.Cached)
}

func TestSolve_BadRequests(t *testing.T) {
	t.Parallel()

	tooLong := make([]string, 301)
	for idx := range tooLong {
		tooLong[idx] = "1"
	}

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{"sequence":`},
		{name: "missing sequence", body: `{}`},
		{name: "wrong type", body: `{"sequence":"1 2 3"}`},
		{name: "fraction", body: `{"sequence":[1.5]}`},
		{name: "unknown field", body: `{"sequence":[1],"extra":true}`},
		{name: "too long", body: `{"sequence":[` + strings.Join(tooLong, ",") + `]}`},
		{name: "overflow", body: `{"sequence":[99999999999999999999]}`},
	}

	handler := newTestServer(t).Handler()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := post(t, handler, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp server.ErrorResponse

			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.NotEmpty(t, resp.ID)
		})
	}
}

func TestSolve_EngineLimit(t *testing.T) {
	t.Parallel()

	srv, err := server.New(server.Config{}, engine.New(engine.WithMaxLen(2)))
	require.NoError(t, err)

	rec := post(t, srv.Handler(), `{"sequence":[1,2,3]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceeds maximum length")
}

func TestSolve_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.PathSolve, http.NoBody))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthAndReady(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t).Handler()

	for _, path := range []string{server.PathHealth, server.PathReady} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))

		assert.Equal(t, http.StatusOK, rec.Code, path)

		var status observability.HealthStatus

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, observability.HealthOK, status.Status, path)
		assert.Equal(t, version.Version, status.Version, path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.PathMetrics, http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	metrics := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(rw, "splitdepth_requests_total 1\n")
	})

	rec = httptest.NewRecorder()
	newTestServer(t, server.WithMetricsHandler(metrics)).Handler().
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.PathMetrics, http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "splitdepth_requests_total")
}

func TestServe_GracefulShutdown(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	var lc net.ListenConfig

	ln, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String()

	require.Eventually(t, func() bool {
		req, reqErr := http.NewRequestWithContext(context.Background(), http.MethodGet, url+server.PathHealth, http.NoBody)
		if reqErr != nil {
			return false
		}

		resp, doErr := http.DefaultClient.Do(req)
		if doErr != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}
