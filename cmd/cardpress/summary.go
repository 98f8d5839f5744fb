package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"cardpress/internal/export"
	"cardpress/internal/runstore"
)

func printRunSummary(w io.Writer, result *export.BatchRunResult, location string) {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	rows := make([][]string, 0, len(result.Outcomes)+len(result.Unattempted))
	for _, outcome := range result.Outcomes {
		rows = append(rows, []string{
			outcome.Key,
			statusLabel(outcome.Status, color),
			outcome.Stage,
			outcome.Artifact,
			formatElapsed(outcome.Elapsed),
		})
	}
	for _, key := range result.Unattempted {
		rows = append(rows, []string{key, statusLabel(runstore.StatusPending, color), "", "", ""})
	}

	fmt.Fprintln(w, renderTable(
		[]string{"Card", "Status", "Stage", "Artifact", "Elapsed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
	fmt.Fprintf(w, "Run %s: %d exported, %d failed, %d not attempted -> %s\n",
		result.RunID, result.SuccessCount, len(result.Failures), len(result.Unattempted), location)
}

func statusLabel(status runstore.Status, color bool) string {
	if !color {
		return string(status)
	}
	switch status {
	case runstore.StatusSuccess:
		return text.FgGreen.Sprint(status)
	case runstore.StatusFailed:
		return text.FgRed.Sprint(status)
	default:
		return text.FgYellow.Sprint(status)
	}
}

func formatElapsed(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.Round(10 * time.Millisecond).String()
}
