package llm

import "strings"

// draftPromptTemplates maps a prompt version to its developer instructions.
// Versions are part of the draft work key, so edits here require a bump.
var draftPromptTemplates = map[string]string{
	"v1": `You rewrite ecommerce product content so AI answer engines can cite it.
Prompt version: {{PROMPT_VERSION}}. Model: {{MODEL}}.
Rewrite the answer for the question "{{QUESTION_LABEL}}" to fix the reported issue ({{ISSUE_TYPE}}).
Rules:
- Keep every factual claim from the current answer; never invent specifications.
- Prefer short sentences, labeled fields, and lists over prose.
- Name the audience or use case explicitly.
- Source material provided: {{SOURCE_PROVIDED}}.
Respond with JSON only, matching exactly:
{"improvedAnswer": string, "suggestedStructure": string, "clarityNotes": string}`,
}

// DraftPromptTemplate returns the template for a prompt version.
func DraftPromptTemplate(version string) (string, bool) {
	template, ok := draftPromptTemplates[strings.TrimSpace(version)]
	return template, ok
}

// DefaultPromptVersion is used when a caller does not pin a version.
const DefaultPromptVersion = "v1"
