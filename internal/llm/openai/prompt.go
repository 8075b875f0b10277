package openai

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"engineo-backend/internal/llm"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const (
	systemPromptDraft   = "You are a product content optimization engine. Respond with JSON only. Never omit keys. Output must match the schema exactly."
	systemPromptFixJSON = "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."
)

// BuildDraftPrompt creates the chat messages for a fix-draft request.
func BuildDraftPrompt(input llm.DraftInput, model string) []Message {
	developer := resolveDraftTemplate(input, model)
	return []Message{
		{Role: "system", Content: systemPromptDraft},
		{Role: "developer", Content: developer},
		{Role: "user", Content: buildUserPrompt(input)},
	}
}

func buildFixPrompt(input llm.DraftInput, model string, raw []byte) []Message {
	developer := resolveDraftTemplate(input, model)
	return []Message{
		{Role: "system", Content: systemPromptFixJSON},
		{Role: "developer", Content: developer},
		{Role: "user", Content: fixUserPrompt(raw)},
	}
}

func resolveDraftTemplate(input llm.DraftInput, model string) string {
	version := strings.TrimSpace(input.PromptVersion)
	template, ok := llm.DraftPromptTemplate(version)
	if !ok {
		log.Printf("unknown prompt version %q, defaulting to %s", version, llm.DefaultPromptVersion)
		version = llm.DefaultPromptVersion
		template, _ = llm.DraftPromptTemplate(version)
	}

	sourceProvided := "true"
	if strings.TrimSpace(input.SourceContext) == "" {
		sourceProvided = "false"
	}

	replacer := strings.NewReplacer(
		"{{PROMPT_VERSION}}", version,
		"{{MODEL}}", model,
		"{{QUESTION_LABEL}}", input.QuestionLabel,
		"{{ISSUE_TYPE}}", input.IssueType,
		"{{SOURCE_PROVIDED}}", sourceProvided,
	)
	return replacer.Replace(template)
}

func buildUserPrompt(input llm.DraftInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\nCategory: %s\nAudience: %s\n", orNA(input.ProductName), orNA(input.Category), orNA(input.Audience))
	fmt.Fprintf(&b, "Question: %s (%s)\n", input.QuestionLabel, input.QuestionID)
	fmt.Fprintf(&b, "Issue to fix: %s\n\n", input.IssueType)
	fmt.Fprintf(&b, "Current answer:\n%s\n", orNA(input.CurrentAnswer))
	if strings.TrimSpace(input.SourceContext) != "" {
		fmt.Fprintf(&b, "\nSource material:\n%s\n", input.SourceContext)
	}
	return b.String()
}

func fixUserPrompt(raw []byte) string {
	return fmt.Sprintf("Fix this JSON to match the schema exactly. Output JSON only:\n%s", string(raw))
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func promptStringFromMessages(messages []Message) string {
	if len(messages) == 0 {
		return ""
	}
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

func hashPromptString(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
