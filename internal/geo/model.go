package geo

// SignalType is one axis of answer-unit readiness scoring.
type SignalType string

const (
	SignalClarity       SignalType = "clarity"
	SignalSpecificity   SignalType = "specificity"
	SignalStructure     SignalType = "structure"
	SignalContext       SignalType = "context"
	SignalAccessibility SignalType = "accessibility"
)

// SignalTypes lists all signal types in evaluation order.
var SignalTypes = []SignalType{
	SignalClarity,
	SignalSpecificity,
	SignalStructure,
	SignalContext,
	SignalAccessibility,
}

// SignalStatus is the pass/fail outcome of one signal check.
type SignalStatus string

const (
	StatusPass             SignalStatus = "pass"
	StatusNeedsImprovement SignalStatus = "needs_improvement"
)

// Signal is one readiness check result for an answer unit.
type Signal struct {
	Type   SignalType   `json:"type"`
	Status SignalStatus `json:"status"`
	Why    string       `json:"why"`
}

// Severity classifies how strongly an issue affects citation readiness.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Issue is a structured problem derived from failing signals or missing
// question coverage.
type Issue struct {
	IssueType  string   `json:"issueType"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	QuestionID string   `json:"questionId,omitempty"`
}

// ConfidenceLevel estimates how likely an answer engine is to cite content.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// Confidence pairs a level with the rationale behind it.
type Confidence struct {
	Level  ConfidenceLevel `json:"level"`
	Reason string          `json:"reason"`
}

// AnswerUnit is the evaluator's view of one content block answering a
// canonical question. It carries the crawl-derived flags the accessibility
// check needs; persistence concerns live elsewhere.
type AnswerUnit struct {
	UnitID       string `json:"unitId"`
	QuestionID   string `json:"questionId"`
	Text         string `json:"text"`
	RequiresJS   bool   `json:"requiresJs"`
	RequiresAuth bool   `json:"requiresAuth"`
}

// ProductMeta provides product context used by the clarity and context checks.
type ProductMeta struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Audience string `json:"audience"`
}

// AnswerUnitEvaluation is the full readiness result for one answer unit.
type AnswerUnitEvaluation struct {
	UnitID             string     `json:"unitId"`
	QuestionID         string     `json:"questionId"`
	Signals            []Signal   `json:"signals"`
	Issues             []Issue    `json:"issues"`
	CitationConfidence Confidence `json:"citationConfidence"`
}

// ProductEvaluation is the product-level readiness snapshot. Issues contains
// the union of unit issues plus cross-unit issues such as missing coverage.
type ProductEvaluation struct {
	ProductID          string                 `json:"productId"`
	AnswerUnits        []AnswerUnitEvaluation `json:"answerUnits"`
	Issues             []Issue                `json:"issues"`
	CitationConfidence Confidence             `json:"citationConfidence"`
}
