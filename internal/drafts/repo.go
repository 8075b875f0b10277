package drafts

import (
	"context"
	"time"
)

// Repo defines persistence operations for fix drafts. State transitions go
// through compare-and-set so concurrent writers cannot both win.
type Repo interface {
	Create(ctx context.Context, draft FixDraft) error
	GetByID(ctx context.Context, draftID string) (FixDraft, error)
	FindReadyByWorkKey(ctx context.Context, productID, workKey string) (FixDraft, error)
	ListOpenByProduct(ctx context.Context, productID string) ([]FixDraft, error)
	MarkReady(ctx context.Context, draftID string, payload Payload, promptHash string, generatedAt time.Time, expiresAt *time.Time) error
	CompareAndSwapState(ctx context.Context, draftID string, from, to State) (bool, error)
}
