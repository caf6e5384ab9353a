package render

import (
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/splitdepth/pkg/alg/intervaldp"
)

const (
	statusAgree    = "ok"
	statusMismatch = "MISMATCH"
	notEvaluated   = "-"
)

// VerifySummary counts the outcome of a verification run.
type VerifySummary struct {
	Checked    int
	Mismatches int
	BruteSkips int
}

// Summarize counts agreements, mismatches and skipped brute-force runs.
func Summarize(comparisons []intervaldp.Comparison) VerifySummary {
	summary := VerifySummary{Checked: len(comparisons)}

	for _, cmp := range comparisons {
		if !cmp.Agree() {
			summary.Mismatches++
		}

		if cmp.BruteForceSkipped {
			summary.BruteSkips++
		}
	}

	return summary
}

// WriteVerify prints one row per comparison and a footer with the totals.
// With mismatchesOnly set, agreeing rows are omitted.
func WriteVerify(w io.Writer, comparisons []intervaldp.Comparison, mismatchesOnly bool) VerifySummary {
	summary := Summarize(comparisons)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Footer = text.FormatDefault
	tw.AppendHeader(table.Row{"#", "Length", "Memo", "Iterative", "Brute force", "Status"})

	for idx, cmp := range comparisons {
		agree := cmp.Agree()
		if mismatchesOnly && agree {
			continue
		}

		var brute any = cmp.BruteForce
		if cmp.BruteForceSkipped {
			brute = notEvaluated
		}

		tw.AppendRow(table.Row{idx + 1, cmp.Length, cmp.Memo, cmp.Iterative, brute, statusCell(agree)})
	}

	tw.AppendFooter(table.Row{
		"", "", "", "",
		humanize.Comma(int64(summary.Checked)) + " checked",
		humanize.Comma(int64(summary.Mismatches)) + " mismatches",
	})
	tw.Render()

	return summary
}

func statusCell(agree bool) string {
	if agree {
		return color.GreenString(statusAgree)
	}

	return color.RedString(statusMismatch)
}
