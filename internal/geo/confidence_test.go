package geo

import (
	"strings"
	"testing"
)

func TestUnitConfidenceLevels(t *testing.T) {
	tests := []struct {
		name    string
		failing []SignalType
		want    ConfidenceLevel
	}{
		{"all pass", nil, ConfidenceHigh},
		{"one warning-tier failure", []SignalType{SignalClarity}, ConfidenceMedium},
		{"two failures", []SignalType{SignalClarity, SignalStructure}, ConfidenceMedium},
		{"critical-tied failure", []SignalType{SignalAccessibility}, ConfidenceLow},
		{"three failures", []SignalType{SignalClarity, SignalStructure, SignalContext}, ConfidenceLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := AnswerUnit{UnitID: "u1", QuestionID: "what_is_it"}
			signals := failingSignals(tt.failing...)
			issues := DetectIssues(unit, signals)
			got := UnitConfidence(signals, issues)
			if got.Level != tt.want {
				t.Errorf("level = %s, want %s", got.Level, tt.want)
			}
			if got.Reason == "" {
				t.Error("reason is empty")
			}
		})
	}
}

func TestUnitConfidenceReasonNamesDecisiveSignal(t *testing.T) {
	signals := failingSignals(SignalAccessibility)
	got := UnitConfidence(signals, nil)
	if !strings.Contains(got.Reason, "accessibility") {
		t.Errorf("reason %q does not name the decisive signal", got.Reason)
	}
}

func unitEvalWith(level ConfidenceLevel, questionID string) AnswerUnitEvaluation {
	return AnswerUnitEvaluation{
		UnitID:             "u-" + questionID,
		QuestionID:         questionID,
		CitationConfidence: Confidence{Level: level, Reason: "test"},
	}
}

func TestProductConfidenceDominance(t *testing.T) {
	units := []AnswerUnitEvaluation{
		unitEvalWith(ConfidenceHigh, "what_is_it"),
		unitEvalWith(ConfidenceLow, "who_is_it_for"),
		unitEvalWith(ConfidenceMedium, "key_features"),
	}
	if got := ProductConfidence(units, true); got.Level != ConfidenceLow {
		t.Errorf("level = %s, want low when any unit is low", got.Level)
	}

	units[1] = unitEvalWith(ConfidenceMedium, "who_is_it_for")
	if got := ProductConfidence(units, true); got.Level != ConfidenceMedium {
		t.Errorf("level = %s, want medium", got.Level)
	}
}

func TestProductConfidenceCoverageCap(t *testing.T) {
	units := []AnswerUnitEvaluation{
		unitEvalWith(ConfidenceHigh, "what_is_it"),
		unitEvalWith(ConfidenceHigh, "who_is_it_for"),
	}
	if got := ProductConfidence(units, false); got.Level != ConfidenceMedium {
		t.Errorf("level with incomplete coverage = %s, want medium", got.Level)
	}
	if got := ProductConfidence(units, true); got.Level != ConfidenceHigh {
		t.Errorf("level with full coverage = %s, want high", got.Level)
	}
}

func TestProductConfidenceNoUnits(t *testing.T) {
	if got := ProductConfidence(nil, false); got.Level != ConfidenceLow {
		t.Errorf("level with no units = %s, want low", got.Level)
	}
}
