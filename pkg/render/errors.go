package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/splitdepth/pkg/seqio"
)

// WriteError prints err as a single line prefixed with "error:". Input errors
// get a hint describing the expected format. Colors follow color.NoColor.
func WriteError(w io.Writer, err error) {
	if err == nil {
		return
	}

	color.New(color.FgRed, color.Bold).Fprint(w, "error: ")
	fmt.Fprintln(w, err.Error())

	if errors.Is(err, seqio.ErrInput) {
		color.New(color.FgCyan).Fprintln(w, "  expected: n followed by n whitespace-separated integers")
	}
}
