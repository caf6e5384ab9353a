package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/splitdepth/pkg/engine"
	"github.com/Sumatoshi-tech/splitdepth/pkg/mcp"
	"github.com/Sumatoshi-tech/splitdepth/pkg/observability"
)

const testTimeout = 10 * time.Second

// connect starts srv on an in-memory transport and returns a client session.
func connect(t *testing.T, srv *mcp.Server) (context.Context, *mcpsdk.ClientSession) {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return ctx, session
}

func callTool(t *testing.T, ctx context.Context, session *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	return result
}

func textOf(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	return text.Text
}

func TestServer_ListToolNames(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})

	assert.Equal(t, []string{mcp.ToolNameSolve, mcp.ToolNameVerify}, srv.ListToolNames())
}

func TestServer_ToolsList(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	toolsResult, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	names := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		names = append(names, tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}

	assert.ElementsMatch(t, []string{"splitdepth_solve", "splitdepth_verify"}, names)
}

func TestServer_Solve(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{Engine: engine.New(engine.WithCache(4))}))

	args := map[string]any{"sequence": []int64{5, 1, 4, 2, 3}}

	result := callTool(t, ctx, session, mcp.ToolNameSolve, args)
	assert.False(t, result.IsError)

	var out mcp.SolveOutput

	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &out))
	assert.Equal(t, int64(4), out.Result)
	assert.Equal(t, 5, out.Length)
	assert.Equal(t, "memo", out.Mode)
	assert.False(t, out.Cached)

	again := callTool(t, ctx, session, mcp.ToolNameSolve, args)
	require.NoError(t, json.Unmarshal([]byte(textOf(t, again)), &out))
	assert.True(t, out.Cached)
}

func TestServer_SolveTooLong(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callTool(t, ctx, session, mcp.ToolNameSolve, map[string]any{"sequence": make([]int64, 301)})

	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "exceeds maximum length")
}

func TestServer_Verify(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callTool(t, ctx, session, mcp.ToolNameVerify, map[string]any{"sequence": []int64{3, 1, 2}})
	assert.False(t, result.IsError)

	var out mcp.VerifyOutput

	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &out))
	assert.True(t, out.Agree)
	assert.False(t, out.BruteForceSkipped)
	assert.Equal(t, int64(3), out.Memo)
	assert.Equal(t, int64(3), out.BruteForce)
}

func TestServer_TracingAndMetrics(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{Tracer: tp.Tracer("test"), Metrics: red}))

	result := callTool(t, ctx, session, mcp.ToolNameSolve, map[string]any{"sequence": []int64{1, 2}})
	require.Len(t, result.Content, 2)

	trailer, ok := result.Content[1].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, trailer.Text, "trace_id=")

	spans := recorder.Ended()
	require.NotEmpty(t, spans)
	assert.Equal(t, "mcp.splitdepth_solve", spans[len(spans)-1].Name())

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.NotEmpty(t, rm.ScopeMetrics)
}
