package sources

import (
	"context"
	"time"
)

// Repo defines persistence operations for product source material.
type Repo interface {
	Create(ctx context.Context, src Source) error
	GetCurrentByProduct(ctx context.Context, productID string) (Source, error)
	GetByID(ctx context.Context, sourceID string) (Source, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]Source, error)
	UpdateExtraction(ctx context.Context, sourceID, extractedKey string, extractedAt time.Time) error
}
