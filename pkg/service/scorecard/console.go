package scorecard

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/musclemap/apiprobe/pkg/models"
)

// RenderConsole writes the ANSI-colored plain-text scorecard.
func RenderConsole(w io.Writer, sc *models.Scorecard) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  API Scorecard for run %s (%s)\n", sc.RunID, sc.Env)
	if sc.Persona != "" {
		fmt.Fprintf(w, "  Persona: %s\n", sc.Persona)
	}
	fmt.Fprintf(w, "  Duration: %v\n", sc.Duration.Round(1e6))
	fmt.Fprintf(w, "  Overall grade: %s (%.1f%% pass rate)\n\n", gradeColored(sc.Grade), sc.Summary.PassRate)

	fmt.Fprintf(w, "  Total: %d   Passed: %s   Failed: %s   Skipped: %s\n\n",
		sc.Summary.Total,
		models.HighlightPassingString(sc.Summary.Passed),
		models.HighlightFailingString(sc.Summary.Failed),
		models.HighlightGrayString(sc.Summary.Skipped))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Total", "Passed", "Failed", "Skipped", "Pass Rate", "Grade"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	for _, cs := range sc.Categories {
		table.Append([]string{
			string(cs.Category),
			fmt.Sprintf("%d", cs.Total),
			fmt.Sprintf("%d", cs.Passed),
			fmt.Sprintf("%d", cs.Failed),
			fmt.Sprintf("%d", cs.Skipped),
			fmt.Sprintf("%.1f%%", cs.PassRate),
			gradeColored(cs.Grade),
		})
	}
	table.Render()

	if len(sc.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Recommendations:")
		for _, rec := range sc.Recommendations {
			fmt.Fprintf(w, "    %s %s\n", severityColored(rec.Severity), rec.Message)
			fmt.Fprintf(w, "      %s\n", models.HighlightGrayString(rec.Suggestion))
			if len(rec.AffectedTests) > 0 {
				fmt.Fprintf(w, "      affected: %v\n", rec.AffectedTests)
			}
		}
	}
	fmt.Fprintln(w)
}

func gradeColored(grade string) string {
	switch grade {
	case "A+", "A", "B":
		return models.HighlightPassingString(grade)
	case "C", "D":
		return models.HighlightWarningString(grade)
	default:
		return models.HighlightFailingString(grade)
	}
}

func severityColored(s models.Severity) string {
	label := fmt.Sprintf("[%s]", s)
	switch s {
	case models.SeverityCritical:
		return models.HighlightFailingString(label)
	case models.SeverityWarning:
		return models.HighlightWarningString(label)
	default:
		return models.HighlightString(label)
	}
}
