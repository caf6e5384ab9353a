package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/splitdepth/pkg/alg/intervaldp"
)

// Tool name constants.
const (
	ToolNameSolve  = "splitdepth_solve"
	ToolNameVerify = "splitdepth_verify"
)

// SequenceInput is the input schema shared by every tool.
type SequenceInput struct {
	Sequence []int64 `json:"sequence" jsonschema:"the integers to evaluate, at most 300"`
}

// SolveOutput is the data returned by splitdepth_solve.
type SolveOutput struct {
	Result int64            `json:"result"`
	Length int              `json:"length"`
	Mode   string           `json:"mode"`
	Cached bool             `json:"cached"`
	Stats  intervaldp.Stats `json:"stats"`
}

// VerifyOutput is the data returned by splitdepth_verify.
type VerifyOutput struct {
	Length            int   `json:"length"`
	Memo              int64 `json:"memo"`
	Iterative         int64 `json:"iterative"`
	BruteForce        int64 `json:"brute_force"`
	BruteForceSkipped bool  `json:"brute_force_skipped"`
	Agree             bool  `json:"agree"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleSolve(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input SequenceInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	outcome, err := s.engine.Solve(ctx, input.Sequence)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(SolveOutput{
		Result: outcome.Result,
		Length: outcome.Length,
		Mode:   string(outcome.Mode),
		Cached: outcome.Cached,
		Stats:  outcome.Stats,
	})
}

func handleVerify(
	_ context.Context, _ *mcpsdk.CallToolRequest, input SequenceInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	cmp, err := intervaldp.Compare(input.Sequence)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(VerifyOutput{
		Length:            cmp.Length,
		Memo:              cmp.Memo,
		Iterative:         cmp.Iterative,
		BruteForce:        cmp.BruteForce,
		BruteForceSkipped: cmp.BruteForceSkipped,
		Agree:             cmp.Agree(),
	})
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
