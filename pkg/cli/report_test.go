package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relwatch/pkg/domain/model"
)

func TestPrintReport(t *testing.T) {
	color.NoColor = true

	report := &model.RunReport{
		RunID: "run-1",
		Results: []model.RepositoryResult{
			{Repository: "a/high", Tag: "v2.0.0", Severity: model.SeverityHigh, Outcome: model.OutcomeNotifiedWithIssue, IssueURL: "https://github.com/a/high/issues/7"},
			{Repository: "b/seen", Tag: "v1.0.0", Outcome: model.OutcomeSkippedAlreadySeen},
			{Repository: "c/broken", Tag: "v0.1.0", Outcome: model.OutcomeSkippedClassificationError, Err: errors.New("malformed")},
			{Repository: "d/empty", Outcome: model.OutcomeSkippedNoRelease},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	gt.String(t, out).Contains("Run run-1")
	gt.String(t, out).Contains("v2.0.0 [HIGH]")
	gt.String(t, out).Contains("issue: https://github.com/a/high/issues/7")
	gt.String(t, out).Contains("error: malformed")
	gt.String(t, out).Contains("notified-with-issue=1")
	gt.String(t, out).Contains("skipped-no-release=1")
	gt.Value(t, bytes.Contains(buf.Bytes(), []byte("failed="))).Equal(false)
}

func TestPrintReport_DeliveryFailed(t *testing.T) {
	color.NoColor = true

	report := &model.RunReport{
		RunID: "run-2",
		Results: []model.RepositoryResult{
			{Repository: "a/lost", Tag: "v1.1.0", Severity: model.SeverityMedium, Outcome: model.OutcomeDeliveryFailed, Err: errors.New("slack unavailable")},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	gt.String(t, out).Contains("delivery-failed")
	gt.String(t, out).Contains("error: slack unavailable")
	gt.String(t, out).Contains("Summary: delivery-failed=1")
}
