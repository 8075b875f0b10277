package products

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"engineo-backend/internal/questions"
)

// Service contains business logic for products and answer units.
type Service struct {
	Repo Repo
}

// Create registers a new product for a user.
func (s *Service) Create(ctx context.Context, userID, name, category, audience string) (Product, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(name) == "" {
		return Product{}, ErrInvalidInput
	}
	product := Product{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Category:  strings.TrimSpace(category),
		Audience:  strings.TrimSpace(audience),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// Get returns a product owned by the user.
func (s *Service) Get(ctx context.Context, userID, productID string) (Product, error) {
	if productID == "" {
		return Product{}, ErrInvalidInput
	}
	return s.Repo.GetProduct(ctx, userID, productID)
}

// List returns a user's products, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Product, error) {
	return s.Repo.ListProducts(ctx, userID, limit, offset)
}

// PutAnswerUnit creates or replaces an answer unit. The question must be
// canonical; unknown IDs are rejected before any state change.
func (s *Service) PutAnswerUnit(ctx context.Context, userID string, unit AnswerUnit) (AnswerUnit, error) {
	if unit.ProductID == "" {
		return AnswerUnit{}, ErrInvalidInput
	}
	if !questions.IsCanonical(unit.QuestionID) {
		return AnswerUnit{}, ErrInvalidInput
	}
	if _, err := s.Repo.GetProduct(ctx, userID, unit.ProductID); err != nil {
		return AnswerUnit{}, err
	}
	if unit.ID == "" {
		unit.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = now
	}
	unit.UpdatedAt = now
	if err := s.Repo.UpsertAnswerUnit(ctx, unit); err != nil {
		return AnswerUnit{}, err
	}
	return unit, nil
}

// Units returns a product's answer units after an ownership check.
func (s *Service) Units(ctx context.Context, userID, productID string) ([]AnswerUnit, error) {
	if _, err := s.Repo.GetProduct(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.Repo.ListAnswerUnits(ctx, productID)
}

// CommitAnswer replaces the content of one answer unit. Used by the
// fix-draft apply flow.
func (s *Service) CommitAnswer(ctx context.Context, productID, unitID, text string) error {
	if productID == "" || unitID == "" {
		return ErrInvalidInput
	}
	return s.Repo.UpdateAnswerUnitText(ctx, productID, unitID, text)
}
