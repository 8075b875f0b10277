package evaluations

import (
	"time"

	"engineo-backend/internal/geo"
)

// Evaluation is the persisted readiness snapshot for a product. Each run
// fully replaces the previous snapshot; history is not retained.
type Evaluation struct {
	ProductID   string
	UserID      string
	Snapshot    geo.ProductEvaluation
	EvaluatedAt time.Time
}
