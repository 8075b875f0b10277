package evaluations

import (
	"context"
	"time"

	"engineo-backend/internal/geo"
	"engineo-backend/internal/products"
	"engineo-backend/internal/shared/metrics"
	"engineo-backend/internal/shared/telemetry"
)

// Service runs readiness evaluations and manages the latest snapshot per
// product.
type Service struct {
	Repo     Repo
	Products *products.Service
}

// Run evaluates a product's current answer units and replaces its snapshot.
func (s *Service) Run(ctx context.Context, userID, productID string) (geo.ProductEvaluation, error) {
	started := time.Now()

	product, err := s.Products.Get(ctx, userID, productID)
	if err != nil {
		return geo.ProductEvaluation{}, err
	}
	units, err := s.Products.Units(ctx, userID, productID)
	if err != nil {
		return geo.ProductEvaluation{}, err
	}

	snapshot := geo.EvaluateProduct(productID, toGeoUnits(units), geo.ProductMeta{
		Name:     product.Name,
		Category: product.Category,
		Audience: product.Audience,
	})

	eval := Evaluation{
		ProductID:   productID,
		UserID:      userID,
		Snapshot:    snapshot,
		EvaluatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Upsert(ctx, eval); err != nil {
		metrics.IncEvaluationFailed()
		return geo.ProductEvaluation{}, err
	}

	metrics.IncEvaluationCompleted()
	metrics.ObserveEvaluationDurationMs(float64(time.Since(started).Microseconds()) / 1000.0)
	telemetry.Info("evaluation.completed", map[string]any{
		"product_id": productID,
		"units":      len(units),
		"issues":     len(snapshot.Issues),
		"confidence": string(snapshot.CitationConfidence.Level),
	})
	return snapshot, nil
}

// ProcessEvaluation runs an evaluation for queue consumers that only need
// the side effect.
func (s *Service) ProcessEvaluation(ctx context.Context, userID, productID string) error {
	_, err := s.Run(ctx, userID, productID)
	return err
}

// Latest returns the stored snapshot for a product after an ownership check.
func (s *Service) Latest(ctx context.Context, userID, productID string) (Evaluation, error) {
	if _, err := s.Products.Get(ctx, userID, productID); err != nil {
		return Evaluation{}, err
	}
	return s.Repo.GetByProduct(ctx, productID)
}

func toGeoUnits(units []products.AnswerUnit) []geo.AnswerUnit {
	out := make([]geo.AnswerUnit, 0, len(units))
	for _, u := range units {
		out = append(out, geo.AnswerUnit{
			UnitID:       u.ID,
			QuestionID:   u.QuestionID,
			Text:         u.Text,
			RequiresJS:   u.RequiresJS,
			RequiresAuth: u.RequiresAuth,
		})
	}
	return out
}
