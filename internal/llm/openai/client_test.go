package openai

import (
	"strings"
	"testing"

	"engineo-backend/internal/llm"
)

func TestNewClientRequiresConfig(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini"); err == nil {
		t.Error("NewClient with empty key should fail")
	}
	if _, err := NewClient("sk-test", ""); err == nil {
		t.Error("NewClient with empty model should fail")
	}
	if _, err := NewClient("sk-test", "gpt-4o-mini"); err != nil {
		t.Errorf("NewClient with full config failed: %v", err)
	}
}

func TestBuildDraftPromptIncludesInputs(t *testing.T) {
	input := llm.DraftInput{
		ProductName:   "Aurora Kettle",
		QuestionID:    "what_is_it",
		QuestionLabel: "What is it?",
		IssueType:     "clarity_gap",
		CurrentAnswer: "A kettle.",
		PromptVersion: "v1",
	}
	messages := BuildDraftPrompt(input, "gpt-4o-mini")
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}
	joined := promptStringFromMessages(messages)
	for _, want := range []string{"Aurora Kettle", "what_is_it", "clarity_gap", "A kettle."} {
		if !strings.Contains(joined, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildDraftPromptUnknownVersionFallsBack(t *testing.T) {
	input := llm.DraftInput{QuestionLabel: "What is it?", IssueType: "clarity_gap", PromptVersion: "v999"}
	messages := BuildDraftPrompt(input, "gpt-4o-mini")
	if !strings.Contains(promptStringFromMessages(messages), "Prompt version: v1") {
		t.Error("unknown prompt version did not fall back to v1")
	}
}
