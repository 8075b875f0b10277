package products

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores products and answer units in memory and is safe for
// concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]Product
	byUser  map[string][]string
	units   map[string]map[string]AnswerUnit
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Product),
		byUser: make(map[string][]string),
		units:  make(map[string]map[string]AnswerUnit),
	}
}

// CreateProduct stores the product.
func (r *MemoryRepo) CreateProduct(ctx context.Context, product Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[product.ID] = product
	r.byUser[product.UserID] = append(r.byUser[product.UserID], product.ID)
	return nil
}

// GetProduct returns a product by ID for a user.
func (r *MemoryRepo) GetProduct(ctx context.Context, userID, productID string) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.byID[productID]
	if !ok {
		return Product{}, ErrNotFound
	}
	if product.UserID != userID {
		return Product{}, ErrForbidden
	}
	return product, nil
}

// ListProducts returns products for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListProducts(ctx context.Context, userID string, limit, offset int) ([]Product, error) {
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
	ids := r.byUser[userID]
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if len(out) == 0 || offset >= len(out) {
		return []Product{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// UpsertAnswerUnit stores or replaces an answer unit.
func (r *MemoryRepo) UpsertAnswerUnit(ctx context.Context, unit AnswerUnit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[unit.ProductID]; !ok {
		return ErrNotFound
	}
	units, ok := r.units[unit.ProductID]
	if !ok {
		units = make(map[string]AnswerUnit)
		r.units[unit.ProductID] = units
	}
	if existing, ok := units[unit.ID]; ok {
		unit.CreatedAt = existing.CreatedAt
	}
	units[unit.ID] = unit
	return nil
}

// ListAnswerUnits returns a product's answer units ordered by creation time.
func (r *MemoryRepo) ListAnswerUnits(ctx context.Context, productID string) ([]AnswerUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	units := r.units[productID]
	out := make([]AnswerUnit, 0, len(units))
	for _, u := range units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GetAnswerUnit returns one answer unit by ID.
func (r *MemoryRepo) GetAnswerUnit(ctx context.Context, productID, unitID string) (AnswerUnit, error) {
	if err := ctx.Err(); err != nil {
		return AnswerUnit{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	unit, ok := r.units[productID][unitID]
	if !ok {
		return AnswerUnit{}, ErrNotFound
	}
	return unit, nil
}

// UpdateAnswerUnitText replaces the text of one answer unit.
func (r *MemoryRepo) UpdateAnswerUnitText(ctx context.Context, productID, unitID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	unit, ok := r.units[productID][unitID]
	if !ok {
		return ErrNotFound
	}
	unit.Text = text
	unit.UpdatedAt = time.Now().UTC()
	r.units[productID][unitID] = unit
	return nil
}

// ClaimGuest reassigns every product owned by guestUserID to authedUserID and
// returns how many moved.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.byUser[guestUserID]
	for _, id := range ids {
		product := r.byID[id]
		product.UserID = authedUserID
		r.byID[id] = product
	}
	r.byUser[authedUserID] = append(r.byUser[authedUserID], ids...)
	delete(r.byUser, guestUserID)
	return len(ids), nil
}

var _ Repo = (*MemoryRepo)(nil)
