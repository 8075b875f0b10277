package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"engineo-backend/internal/evaluations"
	"engineo-backend/internal/products"
)

type Service struct {
	ProductRepo products.Repo
	EvalRepo    evaluations.Repo
}

type ClaimResult struct {
	MigratedProducts    int `json:"migratedProducts"`
	MigratedEvaluations int `json:"migratedEvaluations"`
}

func NewService(productRepo products.Repo, evalRepo evaluations.Repo) *Service {
	return &Service{ProductRepo: productRepo, EvalRepo: evalRepo}
}

func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if productPG, ok := s.ProductRepo.(*products.PGRepo); ok && productPG != nil && productPG.DB != nil {
		if evalPG, ok := s.EvalRepo.(*evaluations.PGRepo); ok && evalPG != nil && evalPG.DB != nil {
			return claimWithTx(ctx, productPG.DB, guestUserID, authedUserID)
		}
	}

	productCount, err := claimProducts(ctx, s.ProductRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	evalCount, err := claimEvaluations(ctx, s.EvalRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedProducts: productCount, MigratedEvaluations: evalCount}, nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	productRes, err := tx.ExecContext(ctx, `UPDATE products SET user_id = $1, updated_at = now() WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	productCount, _ := productRes.RowsAffected()

	evalRes, err := tx.ExecContext(ctx, `UPDATE evaluations SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	evalCount, _ := evalRes.RowsAffected()

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedProducts: int(productCount), MigratedEvaluations: int(evalCount)}, nil
}

type guestClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

func claimProducts(ctx context.Context, repo products.Repo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("products repo does not support claim")
}

func claimEvaluations(ctx context.Context, repo evaluations.Repo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("evaluations repo does not support claim")
}
