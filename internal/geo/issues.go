package geo

import (
	"engineo-backend/internal/questions"
)

// failureThresholdForUpgrade is the simultaneous-failure count at which
// structure/context issues stop being informational.
const failureThresholdForUpgrade = 3

// DetectIssues derives one issue per failing signal for a unit. Severity
// policy: accessibility failures are critical, clarity and specificity are
// warnings, structure and context are informational unless the unit has
// three or more failing signals at once.
func DetectIssues(unit AnswerUnit, signals []Signal) []Issue {
	failing := 0
	for _, s := range signals {
		if s.Status == StatusNeedsImprovement {
			failing++
		}
	}

	out := make([]Issue, 0, failing)
	for _, s := range signals {
		if s.Status != StatusNeedsImprovement {
			continue
		}
		out = append(out, Issue{
			IssueType:  string(s.Type) + "_gap",
			Severity:   severityFor(s.Type, failing),
			Message:    s.Why,
			QuestionID: unit.QuestionID,
		})
	}
	return out
}

func severityFor(t SignalType, failingCount int) Severity {
	switch t {
	case SignalAccessibility:
		return SeverityCritical
	case SignalClarity, SignalSpecificity:
		return SeverityWarning
	default:
		if failingCount >= failureThresholdForUpgrade {
			return SeverityWarning
		}
		return SeverityInfo
	}
}

// DetectMissingCoverage emits one missing_coverage issue, in canonical
// question order, for each canonical question with no answer unit.
func DetectMissingCoverage(units []AnswerUnit) []Issue {
	covered := make(map[string]bool, len(units))
	for _, u := range units {
		covered[u.QuestionID] = true
	}

	var out []Issue
	for _, q := range questions.List() {
		if covered[q.ID] {
			continue
		}
		out = append(out, Issue{
			IssueType:  "missing_coverage",
			Severity:   SeverityWarning,
			Message:    "no content answers " + "\"" + q.Label + "\"",
			QuestionID: q.ID,
		})
	}
	return out
}

// CriticalSignalTypes returns the signal types whose failures are tied to
// critical issues under the current policy.
func CriticalSignalTypes() map[SignalType]bool {
	return map[SignalType]bool{SignalAccessibility: true}
}
