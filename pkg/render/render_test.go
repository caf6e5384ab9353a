package render_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/splitdepth/pkg/alg/intervaldp"
	"github.com/Sumatoshi-tech/splitdepth/pkg/engine"
	"github.com/Sumatoshi-tech/splitdepth/pkg/render"
)

func sampleOutcome() engine.Outcome {
	return engine.Outcome{
		Result:  4,
		Length:  5,
		Mode:    intervaldp.ModeMemo,
		Stats:   intervaldp.Stats{States: 12345, Hits: 67, MaxDepth: 6},
		Elapsed: 1500 * time.Microsecond,
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, format := range render.Formats() {
		got, err := render.ParseFormat(string(format))
		require.NoError(t, err)
		assert.Equal(t, format, got)
	}

	got, err := render.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, render.FormatText, got)

	_, err = render.ParseFormat("xml")
	require.ErrorIs(t, err, render.ErrUnknownFormat)
}

func TestWrite_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, render.FormatText, sampleOutcome()))
	assert.Equal(t, "4\n", buf.String())
}

func TestWrite_TextZero(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, render.FormatText, engine.Outcome{}))
	assert.Equal(t, "0\n", buf.String())
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, render.FormatJSON, sampleOutcome()))

	var report render.Report

	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, render.NewReport(sampleOutcome()), report)
	assert.Contains(t, buf.String(), `"memo_hits": 67`)
	assert.Contains(t, buf.String(), `"elapsed": "1.5ms"`)
}

func TestWrite_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, render.FormatYAML, sampleOutcome()))

	var report render.Report

	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, int64(4), report.Result)
	assert.Equal(t, "memo", report.Mode)
	assert.Equal(t, int64(12345), report.Stats.States)
	assert.Contains(t, buf.String(), "max_depth: 6")
}

func TestWrite_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, render.FormatTable, sampleOutcome()))

	out := buf.String()
	assert.Contains(t, out, "Result")
	assert.Contains(t, out, "12,345")
	assert.Contains(t, out, "Memo hits")
	assert.Contains(t, out, "1.5ms")
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Write(&buf, render.Format("xml"), sampleOutcome())
	require.ErrorIs(t, err, render.ErrUnknownFormat)
	assert.Zero(t, buf.Len())
}
