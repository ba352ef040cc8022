package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/vk/ximsweep/internal/runstore"
)

const timeLayout = "2006-01-02 15:04:05"

var statusStyles = map[runstore.Status]color.Style{
	runstore.StatusSucceeded: {color.FgGreen},
	runstore.StatusFailed:    {color.FgRed, color.OpBold},
	runstore.StatusSkipped:   {color.FgYellow},
}

// Print writes a human readable summary of s to w: one line per
// descriptor, then the totals and the sweep's time span.
func Print(w io.Writer, s Sweep) {
	m := Build(s)
	rule := strings.Repeat("*", 70)

	fmt.Fprintln(w, rule)
	for _, r := range m.Runs {
		style, ok := statusStyles[runstore.Status(r.Status)]
		if !ok {
			style = color.Style{color.FgDefault}
		}
		detail := r.Summary
		if r.Error != "" {
			detail = r.Error
		}
		fmt.Fprintf(w, "%s %s %s %s\n",
			color.Bold.Sprint(r.Name), style.Sprintf("%-9s", r.Status), r.Scheduler, detail)
	}
	fmt.Fprintln(w, rule)

	totals := fmt.Sprintf("%d/%d experiments succeeded, %d failed, %d skipped",
		m.Counts.Succeeded, m.Counts.Total, m.Counts.Failed, m.Counts.Skipped)
	if m.Counts.Succeeded == m.Counts.Total {
		fmt.Fprintln(w, color.Green.Sprint(totals))
	} else {
		fmt.Fprintln(w, color.Red.Sprint(totals))
	}
	fmt.Fprintf(w, "     starts at %s\n", s.Started.Format(timeLayout))
	fmt.Fprintf(w, "       ends at %s\n", s.Finished.Format(timeLayout))
}
