package sources

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const sourceColumns = `
id, user_id, product_id, file_name, original_filename, mime_type, content_type,
size_bytes, storage_provider, storage_key, extracted_text_key, extracted_at, created_at`

// Create inserts a source row.
func (r *PGRepo) Create(ctx context.Context, src Source) error {
	const query = `
INSERT INTO sources (id, user_id, product_id, file_name, original_filename, mime_type, content_type,
  size_bytes, storage_provider, storage_key, extracted_text_key, extracted_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	originalName := src.OriginalFilename
	if originalName == "" {
		originalName = src.FileName
	}
	contentType := src.ContentType
	if contentType == "" {
		contentType = src.MimeType
	}
	storageProvider := src.StorageProvider
	if storageProvider == "" {
		storageProvider = "local"
	}

	_, err := r.DB.ExecContext(ctx, query,
		src.ID,
		src.UserID,
		src.ProductID,
		src.FileName,
		originalName,
		src.MimeType,
		contentType,
		src.SizeBytes,
		storageProvider,
		nullable(src.StorageKey),
		nullable(src.ExtractedTextKey),
		src.ExtractedAt,
		src.CreatedAt,
	)
	return err
}

// GetCurrentByProduct returns the most recent source for a product.
func (r *PGRepo) GetCurrentByProduct(ctx context.Context, productID string) (Source, error) {
	query := `SELECT ` + sourceColumns + `
FROM sources
WHERE product_id = $1
ORDER BY created_at DESC
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, productID))
}

// GetByID returns a source by ID.
func (r *PGRepo) GetByID(ctx context.Context, sourceID string) (Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE id = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, sourceID))
}

// ListByProduct lists sources newest-first.
func (r *PGRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]Source, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + sourceColumns + `
FROM sources
WHERE product_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// UpdateExtraction records the extracted text location, first write wins.
func (r *PGRepo) UpdateExtraction(ctx context.Context, sourceID, extractedKey string, extractedAt time.Time) error {
	const query = `
UPDATE sources
SET extracted_text_key = $1, extracted_at = $2
WHERE id = $3 AND extracted_text_key IS NULL`
	_, err := r.DB.ExecContext(ctx, query, extractedKey, extractedAt, sourceID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Source, error) {
	src, err := scanSource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Source{}, ErrNotFound
		}
		return Source{}, err
	}
	return src, nil
}

func scanSource(row rowScanner) (Source, error) {
	var src Source
	var originalName sql.NullString
	var contentType sql.NullString
	var storageProvider sql.NullString
	var storageKey sql.NullString
	var extractedKey sql.NullString
	var extractedAt sql.NullTime
	if err := row.Scan(
		&src.ID,
		&src.UserID,
		&src.ProductID,
		&src.FileName,
		&originalName,
		&src.MimeType,
		&contentType,
		&src.SizeBytes,
		&storageProvider,
		&storageKey,
		&extractedKey,
		&extractedAt,
		&src.CreatedAt,
	); err != nil {
		return Source{}, err
	}
	if originalName.Valid {
		src.OriginalFilename = originalName.String
	}
	if contentType.Valid {
		src.ContentType = contentType.String
	}
	if storageProvider.Valid {
		src.StorageProvider = storageProvider.String
	}
	if storageKey.Valid {
		src.StorageKey = storageKey.String
	}
	if extractedKey.Valid {
		src.ExtractedTextKey = extractedKey.String
	}
	if extractedAt.Valid {
		src.ExtractedAt = &extractedAt.Time
	}
	return src, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
