package geo

import (
	"strings"
)

// UnitConfidence computes citation confidence for one unit from its signals
// and issues. High requires all five signals to pass. Low is forced by any
// failing signal tied to a critical issue, or by three or more failures.
func UnitConfidence(signals []Signal, issues []Issue) Confidence {
	var failing []Signal
	for _, s := range signals {
		if s.Status == StatusNeedsImprovement {
			failing = append(failing, s)
		}
	}

	if len(failing) == 0 {
		return Confidence{
			Level:  ConfidenceHigh,
			Reason: "all readiness signals pass",
		}
	}

	critical := CriticalSignalTypes()
	var criticalTypes []string
	for _, s := range failing {
		if critical[s.Type] {
			criticalTypes = append(criticalTypes, string(s.Type))
		}
	}

	if len(criticalTypes) > 0 {
		return Confidence{
			Level:  ConfidenceLow,
			Reason: "critical failure on " + strings.Join(criticalTypes, ", "),
		}
	}
	if len(failing) >= 3 {
		return Confidence{
			Level:  ConfidenceLow,
			Reason: "multiple signals need improvement: " + joinSignalTypes(failing),
		}
	}
	return Confidence{
		Level:  ConfidenceMedium,
		Reason: "needs improvement on " + joinSignalTypes(failing),
	}
}

// ProductConfidence aggregates unit confidences by worst-case dominance and
// caps the result at medium when canonical coverage is incomplete.
func ProductConfidence(units []AnswerUnitEvaluation, coverageComplete bool) Confidence {
	if len(units) == 0 {
		return Confidence{
			Level:  ConfidenceLow,
			Reason: "product has no answer units",
		}
	}

	worst := ConfidenceHigh
	var worstUnit string
	for _, u := range units {
		if confidenceRank(u.CitationConfidence.Level) < confidenceRank(worst) {
			worst = u.CitationConfidence.Level
			worstUnit = u.QuestionID
		}
	}

	switch worst {
	case ConfidenceLow:
		return Confidence{
			Level:  ConfidenceLow,
			Reason: "weakest answer unit (" + worstUnit + ") has low confidence",
		}
	case ConfidenceMedium:
		return Confidence{
			Level:  ConfidenceMedium,
			Reason: "weakest answer unit (" + worstUnit + ") has medium confidence",
		}
	}

	if !coverageComplete {
		return Confidence{
			Level:  ConfidenceMedium,
			Reason: "all units pass but canonical questions lack coverage",
		}
	}
	return Confidence{
		Level:  ConfidenceHigh,
		Reason: "all units pass and every canonical question is covered",
	}
}

func confidenceRank(level ConfidenceLevel) int {
	switch level {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	default:
		return 1
	}
}

func joinSignalTypes(signals []Signal) string {
	names := make([]string, 0, len(signals))
	for _, s := range signals {
		names = append(names, string(s.Type))
	}
	return strings.Join(names, ", ")
}
