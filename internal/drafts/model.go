package drafts

import (
	"time"

	"engineo-backend/internal/geo"
	"engineo-backend/internal/llm"
)

// State is the lifecycle state of a fix draft.
type State string

const (
	StatePending   State = "draft_pending"
	StateReady     State = "draft_ready"
	StateApplied   State = "applied"
	StateExpired   State = "expired"
	StateDiscarded State = "discarded"
)

// Terminal reports whether a state accepts no further transitions.
func (s State) Terminal() bool {
	switch s {
	case StateApplied, StateExpired, StateDiscarded:
		return true
	}
	return false
}

// Payload is the proposed content revision carried by a draft.
type Payload struct {
	ImprovedAnswer     string `json:"improvedAnswer"`
	SuggestedStructure string `json:"suggestedStructure,omitempty"`
	ClarityNotes       string `json:"clarityNotes,omitempty"`
}

// FixDraft is a proposed fix for one (product, question, issueType) target.
// AIWorkKey is content-addressed: two drafts with the same key carry
// identical generated content.
type FixDraft struct {
	ID                string
	UserID            string
	ProductID         string
	AnswerUnitID      string
	QuestionID        string
	IssueType         string
	Payload           Payload
	AIWorkKey         string
	ReusedFromWorkKey string
	GeneratedWithAI   bool
	PromptHash        string
	State             State
	GeneratedAt       time.Time
	ExpiresAt         *time.Time
	CreatedAt         time.Time
}

// ExpiredBy reports whether the draft's TTL has elapsed at the given time.
func (d FixDraft) ExpiredBy(now time.Time) bool {
	return d.ExpiresAt != nil && now.After(*d.ExpiresAt)
}

// GenerateResult is the outcome of a preview generation.
type GenerateResult struct {
	Draft           FixDraft
	GeneratedWithAI bool
	AIUsage         *llm.Usage
}

// ApplyResult reports what an applied draft changed.
type ApplyResult struct {
	Success             bool
	UpdatedEvaluation   geo.ProductEvaluation
	IssuesResolved      bool
	IssuesResolvedCount int
}
