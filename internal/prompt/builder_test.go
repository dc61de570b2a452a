package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_SortsSnippetsByRelevance(t *testing.T) {
	t.Parallel()

	snippets := []Snippet{
		{FileName: "b.go", Content: "low relevance content", Relevance: 0.2},
		{FileName: "a.go", Content: "high relevance content", Relevance: 0.9},
	}

	result := Build("find it", snippets, ModelCapabilities{ContextWindow: 100000, SupportsSystemMessage: true})

	require.Equal(t, 2, result.Metadata.IncludedSnippets)
	assert.True(t, strings.Index(result.UserMessage, "a.go") < strings.Index(result.UserMessage, "b.go"))
}

func TestBuild_StopsAtBudget(t *testing.T) {
	t.Parallel()

	longContent := ""
	for i := 0; i < 500; i++ {
		longContent += "word "
	}
	snippets := []Snippet{
		{FileName: "a.go", Content: longContent, Relevance: 1.0},
		{FileName: "b.go", Content: longContent, Relevance: 0.9},
	}

	result := Build("q", snippets, ModelCapabilities{ContextWindow: 700, MaxOutputTokens: 100, SupportsSystemMessage: true})

	// Each snippet costs ceil(500*1.3)=650 tokens against a budget of
	// 700-500-100=100, so the first one already does not fit.
	assert.Equal(t, 0, result.Metadata.IncludedSnippets)
	assert.Equal(t, 2, result.Metadata.TotalSnippets)
}

func TestBuild_NoSystemMessageSupportPrependsToUser(t *testing.T) {
	t.Parallel()

	result := Build("q", nil, ModelCapabilities{ContextWindow: 1000, SupportsSystemMessage: false})

	assert.Empty(t, result.SystemMessage)
	assert.Contains(t, result.UserMessage, systemTemplate)
}

func TestBuild_IsDeterministic(t *testing.T) {
	t.Parallel()

	snippets := []Snippet{{FileName: "a.go", Content: "hello world", Relevance: 0.5, StartLine: 1, EndLine: 2}}
	caps := ModelCapabilities{ContextWindow: 10000, SupportsSystemMessage: true, MaxOutputTokens: 200}

	a := Build("q", snippets, caps)
	b := Build("q", snippets, caps)

	assert.Equal(t, a, b)
}

func TestFormatSnippet_MatchesTemplate(t *testing.T) {
	t.Parallel()

	out := formatSnippet(Snippet{FileName: "x.go", Language: "go", Content: "code", StartLine: 3, EndLine: 5})

	assert.Equal(t, "File: x.go (Lines 3–5)\n```go\ncode\n```", out)
}

func TestEstimateTokens_CeilsWordCountTimes1Point3(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, estimateTokens("one two")) // ceil(2*1.3) = 3
}
