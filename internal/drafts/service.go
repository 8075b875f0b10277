package drafts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"engineo-backend/internal/geo"
	"engineo-backend/internal/llm"
	"engineo-backend/internal/products"
	"engineo-backend/internal/questions"
	"engineo-backend/internal/shared/metrics"
	"engineo-backend/internal/shared/telemetry"
	"engineo-backend/internal/shared/util"
	"engineo-backend/internal/usage"
)

const (
	// DefaultTTL bounds how long a generated draft stays applicable.
	DefaultTTL = 24 * time.Hour

	// DefaultGenerateTimeout bounds one provider call.
	DefaultGenerateTimeout = 90 * time.Second
)

// Evaluator re-runs readiness evaluation after a draft is applied.
type Evaluator interface {
	Run(ctx context.Context, userID, productID string) (geo.ProductEvaluation, error)
}

// SourceProvider supplies optional grounding material for generation prompts.
type SourceProvider interface {
	CurrentText(ctx context.Context, productID string) (string, error)
}

// Service owns the fix-draft workflow: preview generation with
// content-addressed reuse, atomic apply with re-evaluation, discard, and
// lazy expiry.
type Service struct {
	Repo            Repo
	Products        *products.Service
	Evals           Evaluator
	LLM             llm.Client
	Usage           *usage.Service
	Sources         SourceProvider
	PromptVersion   string
	TTL             time.Duration
	GenerateTimeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}

	now func() time.Time
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultTTL
}

func (s *Service) generateTimeout() time.Duration {
	if s.GenerateTimeout > 0 {
		return s.GenerateTimeout
	}
	return DefaultGenerateTimeout
}

func (s *Service) promptVersion() string {
	if strings.TrimSpace(s.PromptVersion) != "" {
		return s.PromptVersion
	}
	return llm.DefaultPromptVersion
}

// GeneratePreview produces (or reuses) a fix draft for one
// (product, question, issueType) target. The work key is a stable hash of
// the generation inputs; a non-expired draft_ready draft with the same key
// is returned without paying for regeneration.
func (s *Service) GeneratePreview(ctx context.Context, userID, productID, questionID, issueType string) (GenerateResult, error) {
	if productID == "" || strings.TrimSpace(issueType) == "" {
		return GenerateResult{}, ErrInvalidInput
	}
	if !questions.IsCanonical(questionID) {
		return GenerateResult{}, ErrInvalidInput
	}

	product, err := s.Products.Get(ctx, userID, productID)
	if err != nil {
		return GenerateResult{}, err
	}
	unit, err := s.targetUnit(ctx, userID, productID, questionID)
	if err != nil {
		return GenerateResult{}, err
	}

	version := s.promptVersion()
	workKey := util.WorkKey(productID, questionID, issueType, unit.Text, version)

	if existing, err := s.Repo.FindReadyByWorkKey(ctx, productID, workKey); err == nil {
		if !existing.ExpiredBy(s.clock()) {
			reused := existing
			reused.ReusedFromWorkKey = existing.AIWorkKey
			reused.GeneratedWithAI = false
			metrics.IncDraftCacheHit()
			return GenerateResult{Draft: reused, GeneratedWithAI: false}, nil
		}
		s.expireLazily(ctx, existing)
	} else if !errors.Is(err, ErrNotFound) {
		return GenerateResult{}, err
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, 1)
		if err != nil {
			return GenerateResult{}, err
		}
		if !ok {
			return GenerateResult{}, usage.ErrLimitReached
		}
	}

	inflightKey := productID + "|" + questionID + "|" + issueType
	if !s.acquire(inflightKey) {
		return GenerateResult{}, ErrGenerationInProgress
	}
	defer s.release(inflightKey)

	draft := FixDraft{
		ID:              uuid.NewString(),
		UserID:          userID,
		ProductID:       productID,
		AnswerUnitID:    unit.ID,
		QuestionID:      questionID,
		IssueType:       issueType,
		AIWorkKey:       workKey,
		GeneratedWithAI: true,
		State:           StatePending,
		CreatedAt:       s.clock(),
	}
	if err := s.Repo.Create(ctx, draft); err != nil {
		return GenerateResult{}, err
	}

	payload, aiUsage, err := s.generate(ctx, product, unit, questionID, issueType, version)
	if err != nil {
		// Never leave a draft pending: failed generations are discarded.
		if _, swapErr := s.Repo.CompareAndSwapState(ctx, draft.ID, StatePending, StateDiscarded); swapErr != nil {
			telemetry.Error("draft.discard_failed", map[string]any{"draft_id": draft.ID, "error": swapErr.Error()})
		}
		metrics.IncDraftGenerationFailed()
		return GenerateResult{}, err
	}

	generatedAt := s.clock()
	expiresAt := generatedAt.Add(s.ttl())
	if err := s.Repo.MarkReady(ctx, draft.ID, Payload(payload.payload), payload.promptHash, generatedAt, &expiresAt); err != nil {
		return GenerateResult{}, err
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil {
			return GenerateResult{}, err
		}
	}

	draft.State = StateReady
	draft.Payload = Payload(payload.payload)
	draft.PromptHash = payload.promptHash
	draft.GeneratedAt = generatedAt
	draft.ExpiresAt = &expiresAt

	metrics.IncDraftGenerated()
	telemetry.Info("draft.generated", map[string]any{
		"draft_id":    draft.ID,
		"product_id":  productID,
		"question_id": questionID,
		"issue_type":  issueType,
		"work_key":    workKey,
	})
	return GenerateResult{Draft: draft, GeneratedWithAI: true, AIUsage: aiUsage}, nil
}

type generated struct {
	payload    llm.DraftPayload
	promptHash string
}

func (s *Service) generate(ctx context.Context, product products.Product, unit products.AnswerUnit, questionID, issueType, version string) (generated, *llm.Usage, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.generateTimeout())
	defer cancel()

	var promptHash string
	genCtx = llm.WithPromptHashSink(genCtx, &promptHash)

	sourceContext := ""
	if s.Sources != nil {
		if text, err := s.Sources.CurrentText(ctx, unit.ProductID); err == nil {
			sourceContext = text
		}
	}

	payload, aiUsage, err := s.LLM.GenerateDraft(genCtx, llm.DraftInput{
		ProductName:   product.Name,
		Category:      product.Category,
		Audience:      product.Audience,
		QuestionID:    questionID,
		QuestionLabel: questions.LabelFor(questionID),
		IssueType:     issueType,
		CurrentAnswer: unit.Text,
		SourceContext: sourceContext,
		PromptVersion: version,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			return generated{}, nil, ErrGenerationTimeout
		}
		return generated{}, nil, errors.Join(ErrGeneration, err)
	}
	return generated{payload: payload, promptHash: promptHash}, &aiUsage, nil
}

// Apply commits a draft_ready draft into its answer unit and re-runs the
// readiness evaluation. The ready-to-applied transition is a compare-and-set:
// exactly one concurrent caller succeeds, the rest fail with
// ErrAlreadyApplied.
func (s *Service) Apply(ctx context.Context, userID, draftID string) (ApplyResult, error) {
	draft, err := s.Repo.GetByID(ctx, draftID)
	if err != nil {
		return ApplyResult{}, err
	}
	if _, err := s.Products.Get(ctx, userID, draft.ProductID); err != nil {
		return ApplyResult{}, err
	}

	if draft.State == StateReady && draft.ExpiredBy(s.clock()) {
		s.expireLazily(ctx, draft)
		return ApplyResult{}, ErrDraftExpired
	}
	switch draft.State {
	case StateReady:
	case StateExpired:
		return ApplyResult{}, ErrDraftExpired
	default:
		return ApplyResult{}, ErrAlreadyApplied
	}

	before, err := s.Evals.Run(ctx, userID, draft.ProductID)
	if err != nil {
		return ApplyResult{}, err
	}

	// Commit before the state transition: a failed commit leaves the draft
	// ready and retryable. Concurrent callers write the same payload, so
	// the CAS below still decides the single winner.
	if err := s.Products.CommitAnswer(ctx, draft.ProductID, draft.AnswerUnitID, draft.Payload.ImprovedAnswer); err != nil {
		return ApplyResult{}, err
	}

	swapped, err := s.Repo.CompareAndSwapState(ctx, draftID, StateReady, StateApplied)
	if err != nil {
		return ApplyResult{}, err
	}
	if !swapped {
		return ApplyResult{}, ErrAlreadyApplied
	}

	after, err := s.Evals.Run(ctx, userID, draft.ProductID)
	if err != nil {
		return ApplyResult{}, err
	}

	resolved := resolvedIssueCount(before.Issues, after.Issues)
	metrics.IncDraftApplied()
	telemetry.Info("draft.applied", map[string]any{
		"draft_id":        draftID,
		"product_id":      draft.ProductID,
		"issues_resolved": resolved,
	})
	return ApplyResult{
		Success:             true,
		UpdatedEvaluation:   after,
		IssuesResolved:      resolved > 0,
		IssuesResolvedCount: resolved,
	}, nil
}

// Discard moves a non-terminal draft to discarded. Discarding a terminal
// draft is a no-op, not an error.
func (s *Service) Discard(ctx context.Context, userID, draftID string) error {
	draft, err := s.Repo.GetByID(ctx, draftID)
	if err != nil {
		return err
	}
	if _, err := s.Products.Get(ctx, userID, draft.ProductID); err != nil {
		return err
	}
	if draft.State.Terminal() {
		return nil
	}
	// Losing the swap means another transition won; discard stays idempotent.
	if _, err := s.Repo.CompareAndSwapState(ctx, draftID, draft.State, StateDiscarded); err != nil {
		return err
	}
	return nil
}

// ListOpen returns pending and ready drafts, lazily expiring stale ones.
func (s *Service) ListOpen(ctx context.Context, userID, productID string) ([]FixDraft, error) {
	if _, err := s.Products.Get(ctx, userID, productID); err != nil {
		return nil, err
	}
	all, err := s.Repo.ListOpenByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	out := make([]FixDraft, 0, len(all))
	for _, draft := range all {
		if draft.State == StateReady && draft.ExpiredBy(now) {
			s.expireLazily(ctx, draft)
			continue
		}
		out = append(out, draft)
	}
	return out, nil
}

func (s *Service) targetUnit(ctx context.Context, userID, productID, questionID string) (products.AnswerUnit, error) {
	units, err := s.Products.Units(ctx, userID, productID)
	if err != nil {
		return products.AnswerUnit{}, err
	}
	for _, u := range units {
		if u.QuestionID == questionID {
			return u, nil
		}
	}
	return products.AnswerUnit{}, ErrInvalidInput
}

func (s *Service) expireLazily(ctx context.Context, draft FixDraft) {
	if _, err := s.Repo.CompareAndSwapState(ctx, draft.ID, StateReady, StateExpired); err != nil {
		telemetry.Error("draft.expire_failed", map[string]any{"draft_id": draft.ID, "error": err.Error()})
	}
}

func (s *Service) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == nil {
		s.inflight = make(map[string]struct{})
	}
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

// resolvedIssueCount counts issues present before apply that are absent
// after, matching on type, question, and message.
func resolvedIssueCount(before, after []geo.Issue) int {
	remaining := make(map[string]int, len(after))
	for _, issue := range after {
		remaining[issueKey(issue)]++
	}
	resolved := 0
	for _, issue := range before {
		key := issueKey(issue)
		if remaining[key] > 0 {
			remaining[key]--
			continue
		}
		resolved++
	}
	return resolved
}

func issueKey(issue geo.Issue) string {
	return issue.IssueType + "|" + issue.QuestionID + "|" + issue.Message
}
