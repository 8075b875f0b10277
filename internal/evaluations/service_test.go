package evaluations

import (
	"context"
	"errors"
	"testing"

	"engineo-backend/internal/geo"
	"engineo-backend/internal/products"
)

const structuredAnswer = "The Aurora kettle boils 1.7 liters in under 3 minutes.\n- Capacity: 1.7 liters\n- Power: 2400 watts\nIdeal for busy kitchens when you need tea fast."

func newEvalService(t *testing.T) (*Service, products.Product) {
	t.Helper()
	prodSvc := &products.Service{Repo: products.NewMemoryRepo()}
	product, err := prodSvc.Create(context.Background(), "user-1", "Aurora Kettle", "kitchen", "home cooks")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return &Service{Repo: NewMemoryRepo(), Products: prodSvc}, product
}

func TestRunStoresLatestSnapshot(t *testing.T) {
	svc, product := newEvalService(t)
	ctx := context.Background()

	if _, err := svc.Products.PutAnswerUnit(ctx, "user-1", products.AnswerUnit{
		ProductID:  product.ID,
		QuestionID: "what_is_it",
		Text:       structuredAnswer,
	}); err != nil {
		t.Fatalf("put unit: %v", err)
	}

	snapshot, err := svc.Run(ctx, "user-1", product.ID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if snapshot.ProductID != product.ID {
		t.Errorf("snapshot productId = %q", snapshot.ProductID)
	}

	stored, err := svc.Latest(ctx, "user-1", product.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if stored.Snapshot.CitationConfidence.Level != snapshot.CitationConfidence.Level {
		t.Errorf("stored snapshot differs from returned snapshot")
	}
}

func TestRunReplacesPreviousSnapshot(t *testing.T) {
	svc, product := newEvalService(t)
	ctx := context.Background()

	unit, err := svc.Products.PutAnswerUnit(ctx, "user-1", products.AnswerUnit{
		ProductID:  product.ID,
		QuestionID: "what_is_it",
		Text:       "short",
	})
	if err != nil {
		t.Fatalf("put unit: %v", err)
	}
	first, err := svc.Run(ctx, "user-1", product.ID)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.CitationConfidence.Level == geo.ConfidenceHigh {
		t.Fatal("weak content should not be high confidence")
	}

	if err := svc.Products.CommitAnswer(ctx, product.ID, unit.ID, structuredAnswer); err != nil {
		t.Fatalf("commit: %v", err)
	}
	second, err := svc.Run(ctx, "user-1", product.ID)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	stored, err := svc.Latest(ctx, "user-1", product.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(stored.Snapshot.Issues) != len(second.Issues) {
		t.Error("latest snapshot was not replaced by the second run")
	}
	if len(second.Issues) >= len(first.Issues) {
		t.Errorf("improving content did not reduce issues: %d -> %d", len(first.Issues), len(second.Issues))
	}
}

func TestLatestWithoutRunReturnsNotFound(t *testing.T) {
	svc, product := newEvalService(t)
	if _, err := svc.Latest(context.Background(), "user-1", product.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRunEnforcesOwnership(t *testing.T) {
	svc, product := newEvalService(t)
	if _, err := svc.Run(context.Background(), "intruder", product.ID); !errors.Is(err, products.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}
