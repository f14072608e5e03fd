package model

// IssueRequest is the payload of a tracking issue
type IssueRequest struct {
	Title     string
	Body      string
	Assignees []string
}

// RouteResult reports what the router delivered
type RouteResult struct {
	Decision Decision
	ChatSent bool
	IssueURL string
	// Err joins the failures of every sink that was attempted
	Err error
}

// Outcome converts a route result into the pipeline terminal state
func (x *RouteResult) Outcome() Outcome {
	switch {
	case x.IssueURL != "":
		return OutcomeNotifiedWithIssue
	case x.ChatSent:
		return OutcomeNotified
	case x.Decision.Chat || x.Decision.Issue:
		return OutcomeDeliveryFailed
	default:
		return OutcomeRecordedSilently
	}
}
