package sources

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"engineo-backend/internal/extract"
	"engineo-backend/internal/products"
	"engineo-backend/internal/queue"
	"engineo-backend/internal/shared/storage/object"
	"engineo-backend/internal/shared/telemetry"
)

// Service contains business logic for product source material.
type Service struct {
	Store    object.ObjectStore
	Repo     Repo
	Products *products.Service
	Queue    queue.Client
}

// Upload saves the file to object storage, records the source, and extracts
// its text for use as generation context. Extraction failure does not fail
// the upload.
func (s *Service) Upload(ctx context.Context, userID, productID, fileName string, r io.Reader) (Source, error) {
	if fileName == "" {
		return Source{}, ErrInvalidInput
	}
	if _, err := s.Products.Get(ctx, userID, productID); err != nil {
		return Source{}, err
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Source{}, err
	}

	src := Source{
		ID:         uuid.NewString(),
		UserID:     userID,
		ProductID:  productID,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, src); err != nil {
		return Source{}, err
	}

	if _, err := extract.ExtractText(ctx, s.Store, storageKey, mimeType, fileName); err != nil {
		telemetry.Warn("source.extract_failed", map[string]any{
			"source_id": src.ID,
			"error":     err.Error(),
		})
		return src, nil
	}
	extractedKey := storageKey + ".extracted.txt"
	extractedAt := time.Now().UTC()
	if err := s.Repo.UpdateExtraction(ctx, src.ID, extractedKey, extractedAt); err != nil {
		return Source{}, err
	}
	src.ExtractedTextKey = extractedKey
	src.ExtractedAt = &extractedAt

	// New source material changes the generation context, so ask the worker
	// to refresh the readiness snapshot.
	if s.Queue != nil {
		msg := queue.Message{
			ProductID:  productID,
			UserID:     userID,
			RequestID:  uuid.NewString(),
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			telemetry.Warn("source.enqueue_failed", map[string]any{
				"product_id": productID,
				"error":      err.Error(),
			})
		}
	}
	return src, nil
}

// List returns sources for a product, newest first.
func (s *Service) List(ctx context.Context, userID, productID string, limit, offset int) ([]Source, error) {
	if _, err := s.Products.Get(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.Repo.ListByProduct(ctx, productID, limit, offset)
}

// CurrentText returns the extracted text of the most recent source for a
// product, or empty when none exists.
func (s *Service) CurrentText(ctx context.Context, productID string) (string, error) {
	src, err := s.Repo.GetCurrentByProduct(ctx, productID)
	if err != nil {
		return "", err
	}
	if src.ExtractedTextKey == "" {
		return "", nil
	}
	reader, err := s.Store.Open(ctx, src.ExtractedTextKey)
	if err != nil {
		return "", err
	}
	defer reader.Close()
	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
