package drafts

import "time"

type generateRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	IssueType  string `json:"issueType" binding:"required"`
}

type draftResponse struct {
	ID                string     `json:"id"`
	ProductID         string     `json:"productId"`
	AnswerUnitID      string     `json:"answerUnitId"`
	QuestionID        string     `json:"questionId"`
	IssueType         string     `json:"issueType"`
	Payload           Payload    `json:"payload"`
	State             string     `json:"state"`
	GeneratedWithAI   bool       `json:"generatedWithAi"`
	ReusedFromWorkKey string     `json:"reusedFromWorkKey,omitempty"`
	GeneratedAt       time.Time  `json:"generatedAt"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
}

func toDraftResponse(d FixDraft) draftResponse {
	return draftResponse{
		ID:                d.ID,
		ProductID:         d.ProductID,
		AnswerUnitID:      d.AnswerUnitID,
		QuestionID:        d.QuestionID,
		IssueType:         d.IssueType,
		Payload:           d.Payload,
		State:             string(d.State),
		GeneratedWithAI:   d.GeneratedWithAI,
		ReusedFromWorkKey: d.ReusedFromWorkKey,
		GeneratedAt:       d.GeneratedAt,
		ExpiresAt:         d.ExpiresAt,
	}
}
