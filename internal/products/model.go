package products

import "time"

// Product is a catalog product owned by a user (tenant).
type Product struct {
	ID        string
	UserID    string
	Name      string
	Category  string
	Audience  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AnswerUnit is one block of product content addressing a canonical buyer
// question. A product may carry zero or multiple units per question.
type AnswerUnit struct {
	ID           string
	ProductID    string
	QuestionID   string
	Text         string
	RequiresJS   bool
	RequiresAuth bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
