package evaluations

import (
	"context"
	"sync"
)

// MemoryRepo stores evaluation snapshots in memory and is safe for
// concurrent use.
type MemoryRepo struct {
	mu        sync.RWMutex
	byProduct map[string]Evaluation
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byProduct: make(map[string]Evaluation)}
}

// Upsert replaces the snapshot for a product.
func (r *MemoryRepo) Upsert(ctx context.Context, eval Evaluation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byProduct[eval.ProductID] = eval
	return nil
}

// GetByProduct returns the latest snapshot for a product.
func (r *MemoryRepo) GetByProduct(ctx context.Context, productID string) (Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	eval, ok := r.byProduct[productID]
	if !ok {
		return Evaluation{}, ErrNotFound
	}
	return eval, nil
}

// ClaimGuest reassigns every snapshot owned by guestUserID to authedUserID and
// returns how many moved.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for productID, eval := range r.byProduct {
		if eval.UserID != guestUserID {
			continue
		}
		eval.UserID = authedUserID
		r.byProduct[productID] = eval
		moved++
	}
	return moved, nil
}

var _ Repo = (*MemoryRepo)(nil)
