package geo

import (
	"strings"
	"unicode"
)

const (
	maxAvgSentenceWords = 28
	minAnswerWords      = 8
)

// boilerplatePhrases are generic claims that say nothing concrete about a
// product. Matching is case-insensitive on the raw answer text.
var boilerplatePhrases = []string{
	"high quality",
	"best in class",
	"world class",
	"top of the line",
	"industry leading",
	"state of the art",
	"premium quality",
	"you won't be disappointed",
	"satisfaction guaranteed",
	"unmatched",
	"unbeatable",
}

// audienceMarkers indicate the answer situates the product for a use case or
// audience without needing another page.
var audienceMarkers = []string{
	"designed for",
	"ideal for",
	"perfect for",
	"built for",
	"made for",
	"suited for",
	"great for",
	"for anyone",
	"for people",
	"use it",
	"use this",
	"when you",
	"whether you",
	"if you",
}

// EvaluateSignals computes the five readiness signals for one answer unit.
// The result is deterministic for identical input: one signal per type, in
// the order of SignalTypes, each with a non-empty why.
func EvaluateSignals(unit AnswerUnit, meta ProductMeta) []Signal {
	return []Signal{
		claritySignal(unit),
		specificitySignal(unit, meta),
		structureSignal(unit),
		contextSignal(unit, meta),
		accessibilitySignal(unit),
	}
}

func claritySignal(unit AnswerUnit) Signal {
	text := strings.TrimSpace(unit.Text)
	if text == "" {
		return needsImprovement(SignalClarity, "answer is empty")
	}
	words := countWords(text)
	if words < minAnswerWords {
		return needsImprovement(SignalClarity, "answer is too short to stand on its own")
	}
	sentences := countSentences(text)
	if sentences > 0 && words/sentences > maxAvgSentenceWords {
		return needsImprovement(SignalClarity, "sentences are long enough to bury the answer")
	}
	if unexplained := unexplainedAcronyms(text); len(unexplained) > 0 {
		return needsImprovement(SignalClarity, "uses unexplained shorthand: "+strings.Join(unexplained, ", "))
	}
	return pass(SignalClarity, "answer is direct and readable")
}

func specificitySignal(unit AnswerUnit, meta ProductMeta) Signal {
	text := strings.TrimSpace(unit.Text)
	if text == "" {
		return needsImprovement(SignalSpecificity, "answer is empty")
	}
	lower := strings.ToLower(text)

	generic := 0
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lower, phrase) {
			generic++
		}
	}

	concrete := containsDigit(text)
	if !concrete && meta.Name != "" && strings.Contains(lower, strings.ToLower(meta.Name)) {
		concrete = true
	}
	if !concrete && meta.Category != "" && strings.Contains(lower, strings.ToLower(meta.Category)) {
		concrete = true
	}

	if generic > 0 && !concrete {
		return needsImprovement(SignalSpecificity, "relies on generic claims with no concrete product detail")
	}
	if !concrete && generic == 0 && countWords(text) < minAnswerWords*2 {
		return needsImprovement(SignalSpecificity, "no measurable or product-specific detail found")
	}
	return pass(SignalSpecificity, "answer ties concrete claims to the product")
}

func structureSignal(unit AnswerUnit) Signal {
	markers := 0
	for _, line := range strings.Split(unit.Text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "#"),
			strings.HasPrefix(trimmed, "- "),
			strings.HasPrefix(trimmed, "* "),
			startsWithListNumber(trimmed):
			markers++
		case isLabelValueLine(trimmed):
			markers++
		}
	}
	if markers >= 2 {
		return pass(SignalStructure, "content carries machine-extractable structure")
	}
	return needsImprovement(SignalStructure, "content is unstructured prose; add headings, lists, or labeled fields")
}

func contextSignal(unit AnswerUnit, meta ProductMeta) Signal {
	lower := strings.ToLower(unit.Text)
	for _, marker := range audienceMarkers {
		if strings.Contains(lower, marker) {
			return pass(SignalContext, "answer situates the product for a use case or audience")
		}
	}
	if meta.Audience != "" && containsAnyWord(lower, strings.ToLower(meta.Audience)) {
		return pass(SignalContext, "answer references the product's target audience")
	}
	return needsImprovement(SignalContext, "answer does not say who or what the product is for")
}

func accessibilitySignal(unit AnswerUnit) Signal {
	switch {
	case unit.RequiresAuth:
		return needsImprovement(SignalAccessibility, "content requires authentication to read")
	case unit.RequiresJS:
		return needsImprovement(SignalAccessibility, "content requires JavaScript execution to render")
	case strings.TrimSpace(unit.Text) == "":
		return needsImprovement(SignalAccessibility, "no crawl-readable content found")
	}
	return pass(SignalAccessibility, "content is readable without scripts or authentication")
}

func pass(t SignalType, why string) Signal {
	return Signal{Type: t, Status: StatusPass, Why: why}
}

func needsImprovement(t SignalType, why string) Signal {
	return Signal{Type: t, Status: StatusNeedsImprovement, Why: why}
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

func countSentences(text string) int {
	count := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

// unexplainedAcronyms returns all-caps tokens of 3+ letters that are not
// followed by a parenthetical expansion anywhere in the text.
func unexplainedAcronyms(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, field := range strings.Fields(text) {
		token := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if len(token) < 3 || seen[token] {
			continue
		}
		if token != strings.ToUpper(token) || !isAllLetters(token) {
			continue
		}
		if strings.Contains(text, token+" (") {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	return out
}

func isAllLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func startsWithListNumber(s string) bool {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')')
}

// isLabelValueLine matches lines like "Weight: 2.3 kg" where a short label
// precedes a colon.
func isLabelValueLine(s string) bool {
	idx := strings.Index(s, ":")
	if idx <= 0 || idx > 40 {
		return false
	}
	label := s[:idx]
	if strings.TrimSpace(s[idx+1:]) == "" {
		return false
	}
	return len(strings.Fields(label)) <= 4
}

func containsAnyWord(haystack, words string) bool {
	for _, w := range strings.Fields(words) {
		if len(w) >= 3 && strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}
