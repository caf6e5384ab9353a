package render_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/splitdepth/pkg/render"
	"github.com/Sumatoshi-tech/splitdepth/pkg/seqio"
)

var errBoom = errors.New("boom")

// Colors are disabled for non-terminal writers, so the output is plain.
func TestWriteError_Plain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	render.WriteError(&buf, fmt.Errorf("solve: %w", errBoom))

	assert.Contains(t, buf.String(), "error: ")
	assert.Contains(t, buf.String(), "solve: boom\n")
	assert.NotContains(t, buf.String(), "expected:")
}

func TestWriteError_InputHint(t *testing.T) {
	t.Parallel()

	_, err := seqio.Parse("3 1 x", 300)

	var buf bytes.Buffer

	render.WriteError(&buf, err)

	assert.Contains(t, buf.String(), "expected: n followed by n")
}

func TestWriteError_Nil(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	render.WriteError(&buf, nil)
	assert.Zero(t, buf.Len())
}
