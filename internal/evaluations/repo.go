package evaluations

import "context"

// Repo defines persistence operations for evaluation snapshots.
type Repo interface {
	Upsert(ctx context.Context, eval Evaluation) error
	GetByProduct(ctx context.Context, productID string) (Evaluation, error)
}
