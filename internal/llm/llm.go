package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers for fix-draft generation.
type Client interface {
	GenerateDraft(ctx context.Context, input DraftInput) (DraftPayload, Usage, error)
}

// DraftInput captures everything the provider needs to rewrite one answer.
type DraftInput struct {
	ProductName   string
	Category      string
	Audience      string
	QuestionID    string
	QuestionLabel string
	IssueType     string
	CurrentAnswer string
	SourceContext string
	PromptVersion string
}

// DraftPayload is the structured revision returned by the provider.
type DraftPayload struct {
	ImprovedAnswer     string `json:"improvedAnswer"`
	SuggestedStructure string `json:"suggestedStructure,omitempty"`
	ClarityNotes       string `json:"clarityNotes,omitempty"`
}

// Usage reports token and latency cost of one generation call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	LatencyMs        int64
}

type promptHashSinkKey struct{}

// WithPromptHashSink returns a context that asks the provider to record the
// hash of the prompt it actually sent.
func WithPromptHashSink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, promptHashSinkKey{}, sink)
}

// PromptHashSinkFromContext returns the prompt hash sink, if any.
func PromptHashSinkFromContext(ctx context.Context) (*string, bool) {
	sink, ok := ctx.Value(promptHashSinkKey{}).(*string)
	return sink, ok
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient stands in until provider wiring is configured.
type PlaceholderClient struct{}

// GenerateDraft returns ErrNotImplemented.
func (PlaceholderClient) GenerateDraft(ctx context.Context, input DraftInput) (DraftPayload, Usage, error) {
	_ = ctx
	_ = input
	return DraftPayload{}, Usage{}, ErrNotImplemented
}
