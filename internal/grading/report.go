package grading

import (
	"fmt"
	"io"
	"strings"
)

const reportSep = "============================================================"

// WriteReport renders a grading run for the terminal: totals first,
// then cards needing review, worst score first.
func WriteReport(w io.Writer, report *Report) {
	fmt.Fprintf(w, "\n%s\nGRADING RESULTS\n%s\n", reportSep, reportSep)

	imperfect := report.Imperfect()
	total := len(report.Graded)
	perfect := total - len(imperfect)
	fmt.Fprintf(w, "\nTotal: %d | Perfect (10/10): %d | Need review: %d\n", total, perfect, len(imperfect))

	if len(report.Ungraded) > 0 {
		fmt.Fprintf(w, "Ungraded (missing from model response): %d\n", len(report.Ungraded))
		for _, card := range report.Ungraded {
			fmt.Fprintf(w, "  - %s: %s\n", gradeID(card), clip(card.Question, 60))
		}
	}
	if report.SkippedBatches > 0 {
		fmt.Fprintf(w, "Skipped batches (request or parse failure): %d\n", report.SkippedBatches)
	}

	if len(imperfect) == 0 {
		fmt.Fprintf(w, "\nAll graded cards are perfect!\n")
		return
	}

	fmt.Fprintf(w, "\n%s\nCARDS NEEDING REVIEW\n%s\n", reportSep, reportSep)
	for i, g := range imperfect {
		fmt.Fprintf(w, "\n%d. Score: %d/10 | ID: %s\n", i+1, g.Score, g.CardID)
		fmt.Fprintf(w, "   Q: %s\n", clip(g.Card.Question, 100))
		fmt.Fprintf(w, "   A: %s\n", clip(g.Card.Answer, 150))
		fmt.Fprintf(w, "   Issue: %s\n", g.Justification)
		fmt.Fprintln(w, strings.Repeat("-", 60))
	}
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
