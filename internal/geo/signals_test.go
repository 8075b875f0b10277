package geo

import "testing"

const readyAnswer = "The Aurora kettle boils 1.7 liters in under 3 minutes.\n- Capacity: 1.7 liters\n- Power: 2400 watts\nIdeal for busy kitchens when you need tea fast."

var kettleMeta = ProductMeta{Name: "Aurora Kettle", Category: "kitchen", Audience: "home cooks"}

func signalByType(t *testing.T, signals []Signal, st SignalType) Signal {
	t.Helper()
	for _, s := range signals {
		if s.Type == st {
			return s
		}
	}
	t.Fatalf("signal %s not found", st)
	return Signal{}
}

func TestEvaluateSignalsReturnsOnePerType(t *testing.T) {
	unit := AnswerUnit{UnitID: "u1", QuestionID: "what_is_it", Text: readyAnswer}
	signals := EvaluateSignals(unit, kettleMeta)
	if len(signals) != 5 {
		t.Fatalf("got %d signals, want 5", len(signals))
	}
	seen := make(map[SignalType]bool)
	for i, s := range signals {
		if seen[s.Type] {
			t.Errorf("duplicate signal type %s", s.Type)
		}
		seen[s.Type] = true
		if s.Type != SignalTypes[i] {
			t.Errorf("signal %d is %s, want %s", i, s.Type, SignalTypes[i])
		}
		if s.Why == "" {
			t.Errorf("signal %s has empty why", s.Type)
		}
	}
}

func TestAllSignalsPassForReadyContent(t *testing.T) {
	unit := AnswerUnit{UnitID: "u1", QuestionID: "what_is_it", Text: readyAnswer}
	for _, s := range EvaluateSignals(unit, kettleMeta) {
		if s.Status != StatusPass {
			t.Errorf("signal %s = %s (%s), want pass", s.Type, s.Status, s.Why)
		}
	}
}

func TestClarityFailsOnEmptyAndShortAnswers(t *testing.T) {
	for _, text := range []string{"", "   ", "Great kettle."} {
		unit := AnswerUnit{UnitID: "u1", QuestionID: "what_is_it", Text: text}
		s := signalByType(t, EvaluateSignals(unit, kettleMeta), SignalClarity)
		if s.Status != StatusNeedsImprovement {
			t.Errorf("clarity for %q = %s, want needs_improvement", text, s.Status)
		}
	}
}

func TestClarityFailsOnUnexplainedAcronyms(t *testing.T) {
	unit := AnswerUnit{
		UnitID:     "u1",
		QuestionID: "key_features",
		Text:       "This kettle supports full PID control so the water temperature stays steady while it heats.",
	}
	s := signalByType(t, EvaluateSignals(unit, kettleMeta), SignalClarity)
	if s.Status != StatusNeedsImprovement {
		t.Fatalf("clarity = %s, want needs_improvement for unexplained acronym", s.Status)
	}

	unit.Text = "This kettle supports full PID (proportional control) so the water temperature stays steady while it heats."
	s = signalByType(t, EvaluateSignals(unit, kettleMeta), SignalClarity)
	if s.Status != StatusPass {
		t.Fatalf("clarity = %s (%s), want pass when acronym is explained", s.Status, s.Why)
	}
}

func TestSpecificityFailsOnBoilerplate(t *testing.T) {
	unit := AnswerUnit{
		UnitID:     "u1",
		QuestionID: "why_choose_this",
		Text:       "This is a high quality, industry leading product and you won't be disappointed with it at all.",
	}
	s := signalByType(t, EvaluateSignals(unit, ProductMeta{}), SignalSpecificity)
	if s.Status != StatusNeedsImprovement {
		t.Fatalf("specificity = %s, want needs_improvement for boilerplate", s.Status)
	}
}

func TestSpecificityPassesOnConcreteNumbers(t *testing.T) {
	unit := AnswerUnit{
		UnitID:     "u1",
		QuestionID: "why_choose_this",
		Text:       "It reaches 100 degrees in 180 seconds and holds temperature for 30 minutes after boiling finishes.",
	}
	s := signalByType(t, EvaluateSignals(unit, ProductMeta{}), SignalSpecificity)
	if s.Status != StatusPass {
		t.Fatalf("specificity = %s (%s), want pass", s.Status, s.Why)
	}
}

func TestStructureNeedsTwoMarkers(t *testing.T) {
	prose := AnswerUnit{
		UnitID:     "u1",
		QuestionID: "key_features",
		Text:       "It has many features that are hard to list because the text just keeps flowing without any breaks.",
	}
	s := signalByType(t, EvaluateSignals(prose, kettleMeta), SignalStructure)
	if s.Status != StatusNeedsImprovement {
		t.Fatalf("structure for prose = %s, want needs_improvement", s.Status)
	}

	structured := prose
	structured.Text = "Capacity: 1.7 liters\nPower: 2400 watts"
	s = signalByType(t, EvaluateSignals(structured, kettleMeta), SignalStructure)
	if s.Status != StatusPass {
		t.Fatalf("structure for labeled fields = %s, want pass", s.Status)
	}
}

func TestContextUsesAudienceHints(t *testing.T) {
	unit := AnswerUnit{
		UnitID:     "u1",
		QuestionID: "who_is_it_for",
		Text:       "Home cooks reach for this kettle every morning before anything else happens in the kitchen.",
	}
	s := signalByType(t, EvaluateSignals(unit, kettleMeta), SignalContext)
	if s.Status != StatusPass {
		t.Fatalf("context = %s (%s), want pass via audience hint", s.Status, s.Why)
	}

	s = signalByType(t, EvaluateSignals(unit, ProductMeta{}), SignalContext)
	if s.Status != StatusNeedsImprovement {
		t.Fatalf("context without metadata = %s, want needs_improvement", s.Status)
	}
}

func TestAccessibilityFlags(t *testing.T) {
	base := AnswerUnit{UnitID: "u1", QuestionID: "what_is_it", Text: readyAnswer}

	jsUnit := base
	jsUnit.RequiresJS = true
	if s := signalByType(t, EvaluateSignals(jsUnit, kettleMeta), SignalAccessibility); s.Status != StatusNeedsImprovement {
		t.Errorf("accessibility with RequiresJS = %s, want needs_improvement", s.Status)
	}

	authUnit := base
	authUnit.RequiresAuth = true
	if s := signalByType(t, EvaluateSignals(authUnit, kettleMeta), SignalAccessibility); s.Status != StatusNeedsImprovement {
		t.Errorf("accessibility with RequiresAuth = %s, want needs_improvement", s.Status)
	}

	if s := signalByType(t, EvaluateSignals(base, kettleMeta), SignalAccessibility); s.Status != StatusPass {
		t.Errorf("accessibility for plain content = %s, want pass", s.Status)
	}
}
