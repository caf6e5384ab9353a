package server

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/solve_request.json
var solveRequestSchema []byte

// ErrInvalidRequest indicates a request body that does not match the solve
// request schema.
var ErrInvalidRequest = errors.New("invalid request")

// RequestValidator checks solve request bodies against the embedded schema.
type RequestValidator struct {
	schema *gojsonschema.Schema
}

// NewRequestValidator compiles the embedded schema.
func NewRequestValidator() (*RequestValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(solveRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("compile request schema: %w", err)
	}

	return &RequestValidator{schema: schema}, nil
}

// Validate returns nil for a valid body. Otherwise the error wraps
// ErrInvalidRequest and the returned details list every violation.
func (v *RequestValidator) Validate(body []byte) ([]string, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if result.Valid() {
		return nil, nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		details = append(details, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return details, fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(details, "; "))
}
