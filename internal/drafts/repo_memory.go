package drafts

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores fix drafts in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.Mutex
	byID map[string]FixDraft
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]FixDraft)}
}

// Create stores the draft.
func (r *MemoryRepo) Create(ctx context.Context, draft FixDraft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[draft.ID] = draft
	return nil
}

// GetByID returns a draft by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, draftID string) (FixDraft, error) {
	if err := ctx.Err(); err != nil {
		return FixDraft{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	draft, ok := r.byID[draftID]
	if !ok {
		return FixDraft{}, ErrNotFound
	}
	return draft, nil
}

// FindReadyByWorkKey returns a draft_ready draft with the given work key.
func (r *MemoryRepo) FindReadyByWorkKey(ctx context.Context, productID, workKey string) (FixDraft, error) {
	if err := ctx.Err(); err != nil {
		return FixDraft{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, draft := range r.byID {
		if draft.ProductID == productID && draft.AIWorkKey == workKey && draft.State == StateReady {
			return draft, nil
		}
	}
	return FixDraft{}, ErrNotFound
}

// ListOpenByProduct returns pending and ready drafts for a product.
func (r *MemoryRepo) ListOpenByProduct(ctx context.Context, productID string) ([]FixDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []FixDraft
	for _, draft := range r.byID {
		if draft.ProductID != productID {
			continue
		}
		if draft.State == StatePending || draft.State == StateReady {
			out = append(out, draft)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// MarkReady moves a pending draft to draft_ready with its generated payload.
func (r *MemoryRepo) MarkReady(ctx context.Context, draftID string, payload Payload, promptHash string, generatedAt time.Time, expiresAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	draft, ok := r.byID[draftID]
	if !ok {
		return ErrNotFound
	}
	if draft.State != StatePending {
		return ErrAlreadyApplied
	}
	draft.State = StateReady
	draft.Payload = payload
	draft.PromptHash = promptHash
	draft.GeneratedAt = generatedAt
	draft.ExpiresAt = expiresAt
	r.byID[draftID] = draft
	return nil
}

// CompareAndSwapState transitions the draft only if it is in the expected
// state. Exactly one concurrent caller observes swapped=true.
func (r *MemoryRepo) CompareAndSwapState(ctx context.Context, draftID string, from, to State) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	draft, ok := r.byID[draftID]
	if !ok {
		return false, ErrNotFound
	}
	if draft.State != from {
		return false, nil
	}
	draft.State = to
	r.byID[draftID] = draft
	return true, nil
}

var _ Repo = (*MemoryRepo)(nil)
