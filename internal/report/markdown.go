// Package report renders evaluation reports for people.
package report

import (
	"fmt"
	"strings"

	"medibot/domain/metrics"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const title = "Diagnosis evaluation report"

// Markdown renders the summary, per-class, calibration and confusion tables.
func Markdown(r *metrics.Report) string {
	var b strings.Builder
	s := r.Summary

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Seed %d, test fraction %.2f, %d train / %d test rows, %d classes, %d symptoms.\n\n",
		r.Seed, r.TestFraction, s.TrainSize, s.TestSize, s.ClassCount, s.FeatureCount)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Accuracy | %.4f |\n", s.Accuracy)
	fmt.Fprintf(&b, "| Accuracy %.0f%% CI | [%.4f, %.4f] |\n", s.AccuracyInterval.Level*100, s.AccuracyInterval.Lower, s.AccuracyInterval.Upper)
	fmt.Fprintf(&b, "| Macro-F1 | %.4f |\n", s.MacroF1)
	fmt.Fprintf(&b, "| Top-%d recall | %.4f |\n", metrics.RecallK, s.Top3Recall)
	fmt.Fprintf(&b, "| ECE | %.4f |\n", s.ExpectedCalibrationError)
	if len(s.MissingProfiles) > 0 {
		fmt.Fprintf(&b, "\nClasses without a trained profile: %s.\n", escape(strings.Join(s.MissingProfiles, ", ")))
	}

	b.WriteString("\n## Per class\n\n")
	b.WriteString("| Class | Precision | Recall | F1 | Support |\n|---|---|---|---|---|\n")
	for _, m := range r.PerClass {
		fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f | %d |\n", escape(m.Class), m.Precision, m.Recall, m.F1, m.Support)
	}

	b.WriteString("\n## Calibration\n\n")
	b.WriteString("| Bin | Range | n | Mean confidence | Accuracy |\n|---|---|---|---|---|\n")
	for _, bin := range r.Calibration {
		fmt.Fprintf(&b, "| %d | [%.1f, %.1f) | %d | %.4f | %.4f |\n",
			bin.Index, bin.Lower, bin.Upper, bin.Count, bin.MeanConfidence, bin.Accuracy)
	}

	b.WriteString("\n## Confusion matrix\n\n")
	b.WriteString("Rows are true classes, columns predicted.\n\n| |")
	for _, c := range r.Confusion.Classes {
		fmt.Fprintf(&b, " %s |", escape(c))
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", len(r.Confusion.Classes)))
	b.WriteString("\n")
	for i, c := range r.Confusion.Classes {
		fmt.Fprintf(&b, "| %s |", escape(c))
		for _, n := range r.Confusion.Counts[i] {
			fmt.Fprintf(&b, " %d |", n)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML renders Markdown(r) as a standalone page.
func HTML(r *metrics.Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML,
	})
	return markdown.ToHTML([]byte(Markdown(r)), p, renderer)
}

// dataset labels are text; keep them out of table syntax and raw HTML
var markdownEscaper = strings.NewReplacer("|", `\|`, "<", `\<`, ">", `\>`)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
