package products

import "time"

// ProductResponse is the outward-facing representation of a product.
type ProductResponse struct {
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Audience  string    `json:"audience,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(product Product) ProductResponse {
	return ProductResponse{
		ProductID: product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Audience:  product.Audience,
		CreatedAt: product.CreatedAt,
	}
}

// AnswerUnitResponse is the outward-facing representation of an answer unit.
type AnswerUnitResponse struct {
	UnitID       string    `json:"unitId"`
	QuestionID   string    `json:"questionId"`
	Text         string    `json:"text"`
	RequiresJS   bool      `json:"requiresJs"`
	RequiresAuth bool      `json:"requiresAuth"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toUnitResponse(unit AnswerUnit) AnswerUnitResponse {
	return AnswerUnitResponse{
		UnitID:       unit.ID,
		QuestionID:   unit.QuestionID,
		Text:         unit.Text,
		RequiresJS:   unit.RequiresJS,
		RequiresAuth: unit.RequiresAuth,
		UpdatedAt:    unit.UpdatedAt,
	}
}
