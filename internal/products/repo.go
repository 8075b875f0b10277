package products

import "context"

// Repo defines persistence operations for products and their answer units.
type Repo interface {
	CreateProduct(ctx context.Context, product Product) error
	GetProduct(ctx context.Context, userID, productID string) (Product, error)
	ListProducts(ctx context.Context, userID string, limit, offset int) ([]Product, error)
	UpsertAnswerUnit(ctx context.Context, unit AnswerUnit) error
	ListAnswerUnits(ctx context.Context, productID string) ([]AnswerUnit, error)
	GetAnswerUnit(ctx context.Context, productID, unitID string) (AnswerUnit, error)
	UpdateAnswerUnitText(ctx context.Context, productID, unitID, text string) error
}
