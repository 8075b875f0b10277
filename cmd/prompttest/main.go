package main

// Smoke-test draft generation against the live provider:
//   go run ./cmd/prompttest -answer answer.txt -question what_is_it -issue vague_answer

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"engineo-backend/internal/llm"
	openai "engineo-backend/internal/llm/openai"
	"engineo-backend/internal/questions"
	"engineo-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	answerPath := flag.String("answer", "", "Path to a file with the current answer text")
	sourcePath := flag.String("source", "", "Path to source material text (optional)")
	questionID := flag.String("question", "what_is_it", "Canonical question ID")
	issueType := flag.String("issue", "vague_answer", "Issue type the draft should fix")
	productName := flag.String("product", "Sample Product", "Product name")
	promptVersion := flag.String("prompt-version", llm.DefaultPromptVersion, "Prompt version")
	outPath := flag.String("out", "", "Path to write raw JSON output (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if strings.TrimSpace(*answerPath) == "" {
		exitErr("answer path is required")
	}
	if !questions.IsCanonical(*questionID) {
		exitErr(fmt.Sprintf("unknown question id: %s", *questionID))
	}

	answerBytes, err := os.ReadFile(*answerPath)
	if err != nil {
		exitErr(fmt.Sprintf("read answer: %v", err))
	}

	sourceContext := ""
	if strings.TrimSpace(*sourcePath) != "" {
		sourceBytes, err := os.ReadFile(*sourcePath)
		if err != nil {
			exitErr(fmt.Sprintf("read source: %v", err))
		}
		sourceContext = string(sourceBytes)
	}

	client, err := buildClient(*provider, *model)
	if err != nil {
		exitErr(err.Error())
	}

	input := llm.DraftInput{
		ProductName:   *productName,
		QuestionID:    *questionID,
		QuestionLabel: questions.LabelFor(*questionID),
		IssueType:     *issueType,
		CurrentAnswer: string(answerBytes),
		SourceContext: sourceContext,
		PromptVersion: *promptVersion,
	}

	var promptHash string
	ctx := llm.WithPromptHashSink(context.Background(), &promptHash)

	payload, usage, err := client.GenerateDraft(ctx, input)
	if err != nil {
		exitErr(fmt.Sprintf("llm generate: %v", err))
	}

	pretty, err := json.MarshalIndent(map[string]any{
		"payload":    payload,
		"promptHash": promptHash,
		"usage": map[string]any{
			"promptTokens":     usage.PromptTokens,
			"completionTokens": usage.CompletionTokens,
			"totalTokens":      usage.TotalTokens,
			"latencyMs":        usage.LatencyMs,
		},
	}, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}

	fmt.Println(string(pretty))
}

func buildClient(provider, model string) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "openai":
		return openai.NewClient(os.Getenv("OPENAI_API_KEY"), model)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
