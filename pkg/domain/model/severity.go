package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

// Severity is the triaged importance of a release
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity accepts the three tiers case-insensitively
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return sev, nil
	default:
		return "", goerr.New("unknown severity",
			goerr.V("severity", s),
			goerr.T(types.ErrTagMalformedResponse),
		)
	}
}

// Label returns the upper-case form used in messages, e.g. "HIGH"
func (x Severity) Label() string {
	return strings.ToUpper(string(x))
}

// SeverityJudgment is the structured result of classifying one release
type SeverityJudgment struct {
	Severity Severity `json:"severity"`
	Summary  string   `json:"summary"`
}

// Decision tells which sinks receive a notification
type Decision struct {
	Chat  bool
	Issue bool
}

// Decide maps a severity to the sinks that must be notified.
//
//	low    -> nothing
//	medium -> chat
//	high   -> chat and issue tracker
func Decide(sev Severity) Decision {
	switch sev {
	case SeverityMedium:
		return Decision{Chat: true}
	case SeverityHigh:
		return Decision{Chat: true, Issue: true}
	default:
		return Decision{}
	}
}
