package evaluations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"engineo-backend/internal/geo"
)

// PGRepo persists evaluation snapshots in Postgres as JSONB.
type PGRepo struct {
	DB *sql.DB
}

// Upsert replaces the snapshot row for a product.
func (r *PGRepo) Upsert(ctx context.Context, eval Evaluation) error {
	snapshot, err := json.Marshal(eval.Snapshot)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO evaluations (product_id, user_id, snapshot, evaluated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (product_id) DO UPDATE SET
  snapshot = EXCLUDED.snapshot,
  evaluated_at = EXCLUDED.evaluated_at`
	_, err = r.DB.ExecContext(ctx, query, eval.ProductID, eval.UserID, snapshot, eval.EvaluatedAt)
	return err
}

// GetByProduct returns the latest snapshot for a product.
func (r *PGRepo) GetByProduct(ctx context.Context, productID string) (Evaluation, error) {
	const query = `
SELECT product_id, user_id, snapshot, evaluated_at
FROM evaluations
WHERE product_id = $1
LIMIT 1`
	var eval Evaluation
	var raw []byte
	err := r.DB.QueryRowContext(ctx, query, productID).Scan(
		&eval.ProductID,
		&eval.UserID,
		&raw,
		&eval.EvaluatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Evaluation{}, ErrNotFound
		}
		return Evaluation{}, err
	}
	var snapshot geo.ProductEvaluation
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return Evaluation{}, err
	}
	eval.Snapshot = snapshot
	return eval, nil
}

// ClaimGuest reassigns every snapshot owned by guestUserID to authedUserID.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `UPDATE evaluations SET user_id = $1 WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

var _ Repo = (*PGRepo)(nil)
