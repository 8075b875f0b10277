package drafts

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"engineo-backend/internal/evaluations"
	"engineo-backend/internal/llm"
	"engineo-backend/internal/products"
	"engineo-backend/internal/usage"
)

const weakAnswer = "Our product is a great solution for everyone."

const improvedAnswer = "The Aurora kettle boils 1.7 liters in under 3 minutes.\n- Capacity: 1.7 liters\n- Power: 2400 watts\nIdeal for busy kitchens when you need tea fast."

type fakeLLM struct {
	calls   int32
	err     error
	block   chan struct{}
	payload llm.DraftPayload
}

func (f *fakeLLM) GenerateDraft(ctx context.Context, input llm.DraftInput) (llm.DraftPayload, llm.Usage, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return llm.DraftPayload{}, llm.Usage{}, ctx.Err()
		}
	}
	if f.err != nil {
		return llm.DraftPayload{}, llm.Usage{}, f.err
	}
	if sink, ok := llm.PromptHashSinkFromContext(ctx); ok {
		*sink = "hash-" + input.QuestionID
	}
	return f.payload, llm.Usage{PromptTokens: 120, CompletionTokens: 80, TotalTokens: 200, LatencyMs: 42}, nil
}

func (f *fakeLLM) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

type draftFixture struct {
	svc     *Service
	llm     *fakeLLM
	product products.Product
	unit    products.AnswerUnit
	clock   *time.Time
}

func newDraftFixture(t *testing.T) *draftFixture {
	t.Helper()
	ctx := context.Background()

	prodSvc := &products.Service{Repo: products.NewMemoryRepo()}
	product, err := prodSvc.Create(ctx, "user-1", "Aurora Kettle", "kitchen", "home cooks")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	unit, err := prodSvc.PutAnswerUnit(ctx, "user-1", products.AnswerUnit{
		ProductID:  product.ID,
		QuestionID: "what_is_it",
		Text:       weakAnswer,
	})
	if err != nil {
		t.Fatalf("put unit: %v", err)
	}

	client := &fakeLLM{payload: llm.DraftPayload{
		ImprovedAnswer:     improvedAnswer,
		SuggestedStructure: "lead sentence plus bullet specs",
		ClarityNotes:       "replaced boilerplate with concrete capacity and power figures",
	}}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fix := &draftFixture{
		llm:     client,
		product: product,
		unit:    unit,
		clock:   &now,
	}
	fix.svc = &Service{
		Repo:     NewMemoryRepo(),
		Products: prodSvc,
		Evals:    &evaluations.Service{Repo: evaluations.NewMemoryRepo(), Products: prodSvc},
		LLM:      client,
		Usage:    usage.NewService(),
		now:      func() time.Time { return *fix.clock },
	}
	return fix
}

func (f *draftFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func TestGeneratePreviewCreatesReadyDraft(t *testing.T) {
	fix := newDraftFixture(t)
	ctx := context.Background()

	result, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !result.GeneratedWithAI {
		t.Error("first generation should call the provider")
	}
	draft := result.Draft
	if draft.State != StateReady {
		t.Errorf("state = %q, want %q", draft.State, StateReady)
	}
	if draft.Payload.ImprovedAnswer != improvedAnswer {
		t.Errorf("payload answer = %q", draft.Payload.ImprovedAnswer)
	}
	if draft.AIWorkKey == "" {
		t.Error("expected a work key")
	}
	if draft.PromptHash == "" {
		t.Error("expected prompt hash from the generation context")
	}
	if draft.ExpiresAt == nil {
		t.Fatal("expected an expiry")
	}
	if got, want := *draft.ExpiresAt, fix.clock.Add(DefaultTTL); !got.Equal(want) {
		t.Errorf("expiresAt = %v, want %v", got, want)
	}
	if result.AIUsage == nil || result.AIUsage.TotalTokens != 200 {
		t.Errorf("aiUsage = %+v", result.AIUsage)
	}

	u, err := fix.svc.Usage.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if u.Used != 1 {
		t.Errorf("usage.Used = %d, want 1", u.Used)
	}
}

func TestGeneratePreviewReusesCachedDraft(t *testing.T) {
	fix := newDraftFixture(t)
	ctx := context.Background()

	first, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap")
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	second, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap")
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}

	if fix.llm.callCount() != 1 {
		t.Errorf("provider calls = %d, want 1", fix.llm.callCount())
	}
	if second.GeneratedWithAI {
		t.Error("cache hit must not be marked as AI generated")
	}
	if second.Draft.ReusedFromWorkKey != first.Draft.AIWorkKey {
		t.Errorf("reusedFromWorkKey = %q, want %q", second.Draft.ReusedFromWorkKey, first.Draft.AIWorkKey)
	}
	if second.Draft.Payload != first.Draft.Payload {
		t.Error("cached payload should match the original")
	}

	u, err := fix.svc.Usage.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if u.Used != 1 {
		t.Errorf("cache hit must not consume usage, Used = %d", u.Used)
	}
}

func TestGeneratePreviewRegeneratesWhenContentChanges(t *testing.T) {
	fix := newDraftFixture(t)
	ctx := context.Background()

	if _, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap"); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if err := fix.svc.Products.CommitAnswer(ctx, fix.product.ID, fix.unit.ID, "A different draft of the answer."); err != nil {
		t.Fatalf("commit: %v", err)
	}
	result, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap")
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if !result.GeneratedWithAI {
		t.Error("changed unit text must produce a new work key and a fresh generation")
	}
	if fix.llm.callCount() != 2 {
		t.Errorf("provider calls = %d, want 2", fix.llm.callCount())
	}
}

func TestGeneratePreviewExpiredCacheRegenerates(t *testing.T) {
	fix := newDraftFixture(t)
	ctx := context.Background()

	if _, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap"); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	fix.advance(25 * time.Hour)

	result, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap")
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if !result.GeneratedWithAI {
		t.Error("expired cache entry must not be reused")
	}
	if fix.llm.callCount() != 2 {
		t.Errorf("provider calls = %d, want 2", fix.llm.callCount())
	}
}

func TestGeneratePreviewRejectsUnknownQuestion(t *testing.T) {
	fix := newDraftFixture(t)
	if _, err := fix.svc.GeneratePreview(context.Background(), "user-1", fix.product.ID, "made_up", "clarity_gap"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGeneratePreviewRejectsQuestionWithoutUnit(t *testing.T) {
	fix := newDraftFixture(t)
	if _, err := fix.svc.GeneratePreview(context.Background(), "user-1", fix.product.ID, "pricing_value", "clarity_gap"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGeneratePreviewFailureDiscardsDraft(t *testing.T) {
	fix := newDraftFixture(t)
	ctx := context.Background()
	fix.llm.err = errors.New("provider unavailable")

	if _, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "clarity_gap"); !errors.Is(err, ErrGeneration) {
		t.Fatalf("err = %v, want ErrGeneration", err)
	}
	open, err := fix.svc.ListOpen(ctx, "user-1", fix.product.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("failed generation left %d open drafts", len(open))
	}
	u, err := fix.svc.Usage.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if u.Used != 0 {
		t.Errorf("failed generation must not consume usage, Used = %d", u.Used)
	}
}

func TestGeneratePreviewConcurrentSameTargetRejected(t *testing.T) {
	fix := newDraftFixture(t)
	ctx := context.Background()
	fix.llm.block = make(chan struct{})

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "clarity_gap")
		done <- err
	}()
	<-started

	// Wait until the first caller holds the in-flight slot.
	deadline := time.After(2 * time.Second)
	for fix.llm.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("first generation never reached the provider")
		case <-time.After(time.Millisecond):
		}
	}

	if _, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "clarity_gap"); !errors.Is(err, ErrGenerationInProgress) {
		t.Fatalf("err = %v, want ErrGenerationInProgress", err)
	}

	close(fix.llm.block)
	if err := <-done; err != nil {
		t.Fatalf("blocked generation failed: %v", err)
	}
	if fix.llm.callCount() != 1 {
		t.Errorf("provider calls = %d, want 1", fix.llm.callCount())
	}
}

func TestGeneratePreviewTimeout(t *testing.T) {
	fix := newDraftFixture(t)
	fix.svc.GenerateTimeout = 20 * time.Millisecond
	fix.llm.block = make(chan struct{})

	if _, err := fix.svc.GeneratePreview(context.Background(), "user-1", fix.product.ID, "what_is_it", "clarity_gap"); !errors.Is(err, ErrGenerationTimeout) {
		t.Fatalf("err = %v, want ErrGenerationTimeout", err)
	}
	open, err := fix.svc.ListOpen(context.Background(), "user-1", fix.product.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("timed-out generation left %d open drafts", len(open))
	}
}

func TestApplyCommitsAnswerAndReevaluates(t *testing.T) {
	fix := newDraftFixture(t)
	ctx := context.Background()

	result, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	applied, err := fix.svc.Apply(ctx, "user-1", result.Draft.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !applied.Success {
		t.Error("apply should report success")
	}
	if !applied.IssuesResolved || applied.IssuesResolvedCount == 0 {
		t.Errorf("improved answer should resolve issues, got count %d", applied.IssuesResolvedCount)
	}

	units, err := fix.svc.Products.Units(ctx, "user-1", fix.product.ID)
	if err != nil {
		t.Fatalf("units: %v", err)
	}
	if units[0].Text != improvedAnswer {
		t.Errorf("unit text not committed: %q", units[0].Text)
	}
	if applied.UpdatedEvaluation.ProductID != fix.product.ID {
		t.Errorf("updated evaluation productId = %q", applied.UpdatedEvaluation.ProductID)
	}
}

func TestApplyTwiceFails(t *testing.T) {
	fix := newDraftFixture(t)
	ctx := context.Background()

	result, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := fix.svc.Apply(ctx, "user-1", result.Draft.ID); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if _, err := fix.svc.Apply(ctx, "user-1", result.Draft.ID); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("second apply err = %v, want ErrAlreadyApplied", err)
	}
}

func TestApplyConcurrentSingleWinner(t *testing.T) {
	fix := newDraftFixture(t)
	ctx := context.Background()

	result, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	const callers = 8
	var wg sync.WaitGroup
	var wins, conflicts int32
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fix.svc.Apply(ctx, "user-1", result.Draft.ID)
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, ErrAlreadyApplied):
				atomic.AddInt32(&conflicts, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("winners = %d, want exactly 1", wins)
	}
	if conflicts != callers-1 {
		t.Errorf("conflicts = %d, want %d", conflicts, callers-1)
	}
}

// flakyProductRepo fails answer commits on demand.
type flakyProductRepo struct {
	products.Repo
	commitErr error
}

func (r *flakyProductRepo) UpdateAnswerUnitText(ctx context.Context, productID, unitID, text string) error {
	if r.commitErr != nil {
		return r.commitErr
	}
	return r.Repo.UpdateAnswerUnitText(ctx, productID, unitID, text)
}

func TestApplyFailedCommitLeavesDraftReady(t *testing.T) {
	fix := newDraftFixture(t)
	ctx := context.Background()

	result, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	repo := &flakyProductRepo{Repo: fix.svc.Products.Repo, commitErr: errors.New("storage unavailable")}
	fix.svc.Products = &products.Service{Repo: repo}

	if _, err := fix.svc.Apply(ctx, "user-1", result.Draft.ID); err == nil {
		t.Fatal("apply with a failing commit should error")
	}
	stored, err := fix.svc.Repo.GetByID(ctx, result.Draft.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.State != StateReady {
		t.Fatalf("state after failed commit = %q, want %q", stored.State, StateReady)
	}
	units, err := fix.svc.Products.Units(ctx, "user-1", fix.product.ID)
	if err != nil {
		t.Fatalf("units: %v", err)
	}
	if units[0].Text != weakAnswer {
		t.Errorf("failed commit must not change the unit, got %q", units[0].Text)
	}

	// The draft is still applicable once storage recovers.
	repo.commitErr = nil
	applied, err := fix.svc.Apply(ctx, "user-1", result.Draft.ID)
	if err != nil {
		t.Fatalf("retry apply: %v", err)
	}
	if !applied.Success {
		t.Error("retry should succeed")
	}
	units, err = fix.svc.Products.Units(ctx, "user-1", fix.product.ID)
	if err != nil {
		t.Fatalf("units: %v", err)
	}
	if units[0].Text != improvedAnswer {
		t.Errorf("unit text not committed on retry: %q", units[0].Text)
	}
}

func TestApplyExpiredDraft(t *testing.T) {
	fix := newDraftFixture(t)
	ctx := context.Background()

	result, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	fix.advance(25 * time.Hour)

	if _, err := fix.svc.Apply(ctx, "user-1", result.Draft.ID); !errors.Is(err, ErrDraftExpired) {
		t.Fatalf("err = %v, want ErrDraftExpired", err)
	}
	// The expiry is persisted, not just observed.
	stored, err := fix.svc.Repo.GetByID(ctx, result.Draft.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.State != StateExpired {
		t.Errorf("state = %q, want %q", stored.State, StateExpired)
	}
}

func TestDiscardIsIdempotent(t *testing.T) {
	fix := newDraftFixture(t)
	ctx := context.Background()

	result, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := fix.svc.Discard(ctx, "user-1", result.Draft.ID); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if err := fix.svc.Discard(ctx, "user-1", result.Draft.ID); err != nil {
		t.Fatalf("second discard should be a no-op, got %v", err)
	}
	if _, err := fix.svc.Apply(ctx, "user-1", result.Draft.ID); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("apply after discard err = %v, want ErrAlreadyApplied", err)
	}
}

func TestListOpenExpiresStaleDrafts(t *testing.T) {
	fix := newDraftFixture(t)
	ctx := context.Background()

	result, err := fix.svc.GeneratePreview(ctx, "user-1", fix.product.ID, "what_is_it", "specificity_gap")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	open, err := fix.svc.ListOpen(ctx, "user-1", fix.product.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("open drafts = %d, want 1", len(open))
	}

	fix.advance(25 * time.Hour)
	open, err = fix.svc.ListOpen(ctx, "user-1", fix.product.ID)
	if err != nil {
		t.Fatalf("list after expiry: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("open drafts after expiry = %d, want 0", len(open))
	}
	stored, err := fix.svc.Repo.GetByID(ctx, result.Draft.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.State != StateExpired {
		t.Errorf("state = %q, want %q", stored.State, StateExpired)
	}
}

func TestGeneratePreviewEnforcesOwnership(t *testing.T) {
	fix := newDraftFixture(t)
	if _, err := fix.svc.GeneratePreview(context.Background(), "intruder", fix.product.ID, "what_is_it", "clarity_gap"); !errors.Is(err, products.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}
