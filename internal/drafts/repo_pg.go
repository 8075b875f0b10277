package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo persists fix drafts in Postgres. State transitions use conditional
// updates so concurrent callers cannot both win a swap.
type PGRepo struct {
	DB *sql.DB
}

const draftColumns = `
id, user_id, product_id, answer_unit_id, question_id, issue_type,
payload, ai_work_key, reused_from_work_key, generated_with_ai, prompt_hash,
state, generated_at, expires_at, created_at`

// Create inserts a draft row.
func (r *PGRepo) Create(ctx context.Context, draft FixDraft) error {
	payload, err := json.Marshal(draft.Payload)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO fix_drafts (id, user_id, product_id, answer_unit_id, question_id, issue_type,
  payload, ai_work_key, reused_from_work_key, generated_with_ai, prompt_hash,
  state, generated_at, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err = r.DB.ExecContext(ctx, query,
		draft.ID,
		draft.UserID,
		draft.ProductID,
		draft.AnswerUnitID,
		draft.QuestionID,
		draft.IssueType,
		payload,
		draft.AIWorkKey,
		nullableString(draft.ReusedFromWorkKey),
		draft.GeneratedWithAI,
		nullableString(draft.PromptHash),
		string(draft.State),
		nullableTime(draft.GeneratedAt),
		draft.ExpiresAt,
		draft.CreatedAt,
	)
	return err
}

// GetByID returns a draft by ID.
func (r *PGRepo) GetByID(ctx context.Context, draftID string) (FixDraft, error) {
	query := `SELECT ` + draftColumns + ` FROM fix_drafts WHERE id = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, draftID))
}

// FindReadyByWorkKey returns a draft_ready draft with the given work key.
func (r *PGRepo) FindReadyByWorkKey(ctx context.Context, productID, workKey string) (FixDraft, error) {
	query := `SELECT ` + draftColumns + `
FROM fix_drafts
WHERE product_id = $1 AND ai_work_key = $2 AND state = 'draft_ready'
ORDER BY created_at DESC
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, productID, workKey))
}

// ListOpenByProduct returns pending and ready drafts for a product.
func (r *PGRepo) ListOpenByProduct(ctx context.Context, productID string) ([]FixDraft, error) {
	query := `SELECT ` + draftColumns + `
FROM fix_drafts
WHERE product_id = $1 AND state IN ('draft_pending', 'draft_ready')
ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FixDraft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, draft)
	}
	return out, rows.Err()
}

// MarkReady moves a pending draft to draft_ready with its generated payload.
func (r *PGRepo) MarkReady(ctx context.Context, draftID string, payload Payload, promptHash string, generatedAt time.Time, expiresAt *time.Time) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	const query = `
UPDATE fix_drafts
SET state = 'draft_ready', payload = $2, prompt_hash = $3, generated_at = $4, expires_at = $5
WHERE id = $1 AND state = 'draft_pending'`
	res, err := r.DB.ExecContext(ctx, query, draftID, encoded, nullableString(promptHash), generatedAt, expiresAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CompareAndSwapState transitions the draft only if it is in the expected
// state.
func (r *PGRepo) CompareAndSwapState(ctx context.Context, draftID string, from, to State) (bool, error) {
	const query = `
UPDATE fix_drafts
SET state = $3
WHERE id = $1 AND state = $2`
	res, err := r.DB.ExecContext(ctx, query, draftID, string(from), string(to))
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (FixDraft, error) {
	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FixDraft{}, ErrNotFound
		}
		return FixDraft{}, err
	}
	return draft, nil
}

func scanDraft(row rowScanner) (FixDraft, error) {
	var draft FixDraft
	var payload []byte
	var reused sql.NullString
	var promptHash sql.NullString
	var state string
	var generatedAt sql.NullTime
	var expiresAt sql.NullTime
	if err := row.Scan(
		&draft.ID,
		&draft.UserID,
		&draft.ProductID,
		&draft.AnswerUnitID,
		&draft.QuestionID,
		&draft.IssueType,
		&payload,
		&draft.AIWorkKey,
		&reused,
		&draft.GeneratedWithAI,
		&promptHash,
		&state,
		&generatedAt,
		&expiresAt,
		&draft.CreatedAt,
	); err != nil {
		return FixDraft{}, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &draft.Payload); err != nil {
			return FixDraft{}, err
		}
	}
	if reused.Valid {
		draft.ReusedFromWorkKey = reused.String
	}
	if promptHash.Valid {
		draft.PromptHash = promptHash.String
	}
	draft.State = State(state)
	if generatedAt.Valid {
		draft.GeneratedAt = generatedAt.Time
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		draft.ExpiresAt = &t
	}
	return draft, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
