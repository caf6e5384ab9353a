// Package render writes solve outcomes, verification runs and memo tables
// for people and for programs.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/splitdepth/pkg/alg/intervaldp"
	"github.com/Sumatoshi-tech/splitdepth/pkg/engine"
)

// Format selects an output encoding.
type Format string

// Output formats.
const (
	// FormatText prints the bare result followed by a newline.
	FormatText Format = "text"
	// FormatJSON prints an indented JSON report.
	FormatJSON Format = "json"
	// FormatYAML prints a YAML report.
	FormatYAML Format = "yaml"
	// FormatTable prints a human-readable table.
	FormatTable Format = "table"
)

// ErrUnknownFormat indicates an output format that is not recognized.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML, FormatTable}
}

// ParseFormat converts a format name. The empty string selects FormatText.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatTable:
		return Format(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Report is the machine-readable view of an outcome.
type Report struct {
	Length    int              `json:"length"     yaml:"length"`
	Result    int64            `json:"result"     yaml:"result"`
	Mode      string           `json:"mode"       yaml:"mode"`
	Cached    bool             `json:"cached"     yaml:"cached"`
	Elapsed   string           `json:"elapsed"    yaml:"elapsed"`
	ElapsedNS int64            `json:"elapsed_ns" yaml:"elapsed_ns"`
	Stats     intervaldp.Stats `json:"stats"      yaml:"stats"`
}

// NewReport converts an outcome.
func NewReport(outcome engine.Outcome) Report {
	return Report{
		Length:    outcome.Length,
		Result:    outcome.Result,
		Mode:      string(outcome.Mode),
		Cached:    outcome.Cached,
		Elapsed:   outcome.Elapsed.String(),
		ElapsedNS: outcome.Elapsed.Nanoseconds(),
		Stats:     outcome.Stats,
	}
}

// Write renders outcome to w in the given format. Callers that must not
// emit partial output on failure render into a buffer first.
func Write(w io.Writer, format Format, outcome engine.Outcome) error {
	var err error

	switch format {
	case FormatText, "":
		_, err = io.WriteString(w, strconv.FormatInt(outcome.Result, 10)+"\n")
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(NewReport(outcome))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		err = enc.Encode(NewReport(outcome))
		if err == nil {
			err = enc.Close()
		}
	case FormatTable:
		err = writeOutcomeTable(w, outcome)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	return nil
}

func writeOutcomeTable(w io.Writer, outcome engine.Outcome) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.AppendRows([]table.Row{
		{"Result", outcome.Result},
		{"Length", outcome.Length},
		{"Mode", string(outcome.Mode)},
		{"States", humanize.Comma(outcome.Stats.States)},
		{"Memo hits", humanize.Comma(outcome.Stats.Hits)},
		{"Max depth", outcome.Stats.MaxDepth},
		{"Cached", outcome.Cached},
		{"Elapsed", formatElapsed(outcome.Elapsed)},
	})
	tw.Render()

	return nil
}

func formatElapsed(d time.Duration) string {
	if d < time.Microsecond {
		return d.String()
	}

	return d.Round(time.Microsecond).String()
}
