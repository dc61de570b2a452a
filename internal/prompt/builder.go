// Package prompt assembles the final LLM-facing prompt from ranked
// snippets under a token budget, per spec.md §4.8. Grounded on the
// teacher's deterministic template-assembly style (internal/config's
// structured, always-same-shape output) generalized to the system/user
// message pair a model capability set requires here.
package prompt

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// reservedTokens approximates the cost of the query itself plus the
// template formatting around each snippet (spec.md §4.8's "reserved_for_
// query_and_formatting ≈ 500").
const reservedTokens = 500

// Snippet is one scored, formattable piece of content.
type Snippet struct {
	FileName  string
	Language  string
	Content   string
	StartLine int
	EndLine   int
	Relevance float64
}

// ModelCapabilities describes the constraints the assembled prompt must
// respect.
type ModelCapabilities struct {
	ContextWindow         int
	SupportsSystemMessage bool
	MaxOutputTokens       int
}

// Metadata reports how the result was assembled.
type Metadata struct {
	IncludedSnippets int
	TotalSnippets    int
	EstimatedTokens  int
}

// Result is the prompt builder's output.
type Result struct {
	SystemMessage string // empty when capabilities.SupportsSystemMessage is false
	UserMessage   string
	Metadata      Metadata
}

const systemTemplate = "You are a coding assistant. Use the provided context snippets to answer the user's question about the codebase. Cite file names and line ranges when relevant."

// Build sorts snippets by descending relevance, greedily includes them
// under the computed token budget, formats each, and assembles the final
// system/user message pair. Deterministic for identical inputs.
func Build(query string, snippets []Snippet, caps ModelCapabilities) Result {
	sorted := make([]Snippet, len(snippets))
	copy(sorted, snippets)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Relevance > sorted[j].Relevance })

	budget := caps.ContextWindow - reservedTokens - caps.MaxOutputTokens
	if budget < 0 {
		budget = 0
	}

	var included []Snippet
	estimated := 0
	for _, s := range sorted {
		cost := estimateTokens(s.Content)
		if estimated+cost > budget {
			break
		}
		included = append(included, s)
		estimated += cost
	}

	var formatted []string
	for _, s := range included {
		formatted = append(formatted, formatSnippet(s))
	}

	userMessage := buildUserMessage(query, formatted)
	systemMessage := systemTemplate

	result := Result{
		UserMessage: userMessage,
		Metadata: Metadata{
			IncludedSnippets: len(included),
			TotalSnippets:    len(snippets),
			EstimatedTokens:  estimated,
		},
	}

	if caps.SupportsSystemMessage {
		result.SystemMessage = systemMessage
	} else {
		result.UserMessage = systemMessage + "\n\n" + userMessage
	}

	return result
}

func buildUserMessage(query string, formattedSnippets []string) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(query)
	if len(formattedSnippets) > 0 {
		b.WriteString("\n\nContext:\n\n")
		b.WriteString(strings.Join(formattedSnippets, "\n\n"))
	}
	return b.String()
}

// formatSnippet renders spec.md §4.8's exact template.
func formatSnippet(s Snippet) string {
	return fmt.Sprintf("File: %s (Lines %d–%d)\n```%s\n%s\n```", s.FileName, s.StartLine, s.EndLine, s.Language, s.Content)
}

// estimateTokens is the deliberate heuristic spec.md §4.8 specifies:
// ceil(word_count * 1.3). Precise tokenization is a non-goal.
func estimateTokens(content string) int {
	words := len(strings.Fields(content))
	return int(math.Ceil(float64(words) * 1.3))
}
