package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/splitdepth/pkg/alg/intervaldp"
)

const (
	pageTitle   = "splitdepth memo table"
	fullZoomPct = 100
)

var heatmapColors = []string{"#f6efa6", "#d88273", "#bf444c"}

// HeatmapData returns the computed entries of one side of the memo table as
// [r, l, value] triples, plus the largest value.
func HeatmapData(memo *intervaldp.Table, side intervaldp.Side) ([]opts.HeatMapData, int64) {
	data := make([]opts.HeatMapData, 0)

	var maxVal int64

	for l := range memo.Len() + 1 {
		for r := l; r <= memo.Len(); r++ {
			val, ok := memo.Lookup(l, r, side)
			if !ok {
				continue
			}

			maxVal = max(maxVal, val)
			data = append(data, opts.HeatMapData{Value: []any{r, l, val}})
		}
	}

	return data, maxVal
}

// Heatmap builds the chart of one memoized side. The x axis is the interval
// end r, the y axis its start l.
func Heatmap(memo *intervaldp.Table, side intervaldp.Side) *charts.HeatMap {
	positions := positionLabels(memo.Len() + 1)
	data, maxVal := HeatmapData(memo, side)

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("eval(l, r, %s)", side),
			Subtitle: fmt.Sprintf("%d computed states", len(data)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: fullZoomPct}, opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "r",
			Type:      "category",
			Data:      positions,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "l",
			Type:      "category",
			Data:      positions,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(max(maxVal, 1)),
			InRange:    &opts.VisualMapInRange{Color: heatmapColors},
		}),
	)

	hm.AddSeries(side.String(), data)

	return hm
}

// SequenceChart builds a bar chart of the sequence values by index.
func SequenceChart(seq []int64) *charts.Bar {
	bars := make([]opts.BarData, 0, len(seq))
	for _, v := range seq {
		bars = append(bars, opts.BarData{Value: v})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Sequence",
			Subtitle: fmt.Sprintf("n = %d", len(seq)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(positionLabels(len(seq))).AddSeries("a[i]", bars)

	return bar
}

// WritePlot renders an HTML page with the sequence and one heatmap per
// memoized side.
func WritePlot(w io.Writer, seq []int64, memo *intervaldp.Table) error {
	page := components.NewPage()
	page.PageTitle = pageTitle
	page.AddCharts(
		SequenceChart(seq),
		Heatmap(memo, intervaldp.SideLeft),
		Heatmap(memo, intervaldp.SideRight),
	)

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}

func positionLabels(n int) []string {
	labels := make([]string, n)
	for idx := range n {
		labels[idx] = strconv.Itoa(idx)
	}

	return labels
}
