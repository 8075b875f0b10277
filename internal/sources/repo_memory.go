package sources

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Source // productID -> sources
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Source)}
}

// Create appends a source for a product.
func (r *MemoryRepo) Create(ctx context.Context, src Source) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[src.ProductID] = append(r.data[src.ProductID], src)
	return nil
}

// GetCurrentByProduct returns the most recent source for a product.
func (r *MemoryRepo) GetCurrentByProduct(ctx context.Context, productID string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	srcs := r.data[productID]
	if len(srcs) == 0 {
		return Source{}, ErrNotFound
	}
	return srcs[len(srcs)-1], nil
}

// GetByID returns a source by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, sourceID string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, srcs := range r.data {
		for i := range srcs {
			if srcs[i].ID == sourceID {
				return srcs[i], nil
			}
		}
	}
	return Source{}, ErrNotFound
}

// ListByProduct returns sources for a product, newest first.
func (r *MemoryRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	stored := r.data[productID]
	r.mu.RUnlock()

	if len(stored) == 0 || offset >= len(stored) {
		return []Source{}, nil
	}

	srcs := make([]Source, len(stored))
	copy(srcs, stored)
	sort.Slice(srcs, func(i, j int) bool {
		return srcs[i].CreatedAt.After(srcs[j].CreatedAt)
	})

	end := len(srcs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return srcs[offset:end], nil
}

// UpdateExtraction records the extracted text location for a source.
func (r *MemoryRepo) UpdateExtraction(ctx context.Context, sourceID, extractedKey string, extractedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for productID, srcs := range r.data {
		for i := range srcs {
			if srcs[i].ID == sourceID {
				if srcs[i].ExtractedTextKey == "" {
					srcs[i].ExtractedTextKey = extractedKey
					srcs[i].ExtractedAt = &extractedAt
					r.data[productID] = srcs
				}
				return nil
			}
		}
	}
	return ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)
