package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/m-mizutani/relwatch/pkg/domain/model"
)

var outcomeColors = map[model.Outcome]*color.Color{
	model.OutcomeSkippedNoRelease:           color.New(color.FgHiBlack),
	model.OutcomeSkippedAlreadySeen:         color.New(color.FgHiBlack),
	model.OutcomeSkippedClassificationError: color.New(color.FgYellow),
	model.OutcomeRecordedSilently:           color.New(color.FgCyan),
	model.OutcomeNotified:                   color.New(color.FgGreen),
	model.OutcomeNotifiedWithIssue:          color.New(color.FgMagenta, color.Bold),
	model.OutcomeDeliveryFailed:             color.New(color.FgRed),
	model.OutcomeFailed:                     color.New(color.FgRed, color.Bold),
}

func printReport(w io.Writer, report *model.RunReport) {
	fmt.Fprintf(w, "Run %s\n", report.RunID)

	for _, r := range report.Results {
		c, ok := outcomeColors[r.Outcome]
		if !ok {
			c = color.New(color.Reset)
		}

		line := fmt.Sprintf("  %-28s %-40s", r.Outcome, r.Repository)
		if r.Tag != "" {
			line += " " + r.Tag
		}
		if r.Severity != "" {
			line += " [" + r.Severity.Label() + "]"
		}
		c.Fprintln(w, line)

		if r.IssueURL != "" {
			fmt.Fprintf(w, "      issue: %s\n", r.IssueURL)
		}
		if r.Err != nil {
			fmt.Fprintf(w, "      error: %s\n", r.Err.Error())
		}
	}

	fmt.Fprint(w, "Summary:")
	for _, o := range model.Outcomes {
		if n := report.Count(o); n > 0 {
			fmt.Fprintf(w, " %s=%d", o, n)
		}
	}
	fmt.Fprintln(w)
}
