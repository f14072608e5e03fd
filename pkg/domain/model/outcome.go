package model

import "github.com/m-mizutani/relwatch/pkg/domain/types"

// Outcome is the terminal state of one repository within a run
type Outcome string

const (
	OutcomeSkippedNoRelease           Outcome = "skipped-no-release"
	OutcomeSkippedAlreadySeen         Outcome = "skipped-already-seen"
	OutcomeSkippedClassificationError Outcome = "skipped-classification-error"
	OutcomeRecordedSilently           Outcome = "recorded-silently"
	OutcomeNotified                   Outcome = "notified"
	OutcomeNotifiedWithIssue          Outcome = "notified-with-issue"
	OutcomeDeliveryFailed             Outcome = "delivery-failed"
	OutcomeFailed                     Outcome = "failed"
)

// Outcomes lists every outcome in report order
var Outcomes = []Outcome{
	OutcomeNotifiedWithIssue,
	OutcomeNotified,
	OutcomeDeliveryFailed,
	OutcomeRecordedSilently,
	OutcomeSkippedAlreadySeen,
	OutcomeSkippedNoRelease,
	OutcomeSkippedClassificationError,
	OutcomeFailed,
}

// RepositoryResult is what happened to one repository during a run
type RepositoryResult struct {
	Repository types.RepositoryID
	Tag        string
	Severity   Severity
	Outcome    Outcome
	IssueURL   string
	Err        error
}

// RunReport collects results in processing order
type RunReport struct {
	RunID   string
	Results []RepositoryResult
}

// Count returns how many repositories ended in the given outcome
func (x *RunReport) Count(outcome Outcome) int {
	var n int
	for _, r := range x.Results {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}
