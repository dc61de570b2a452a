package cortexctx

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cortexctx/internal/engineconfig"
	"github.com/mvp-joe/cortexctx/internal/localcontext"
	"github.com/mvp-joe/cortexctx/internal/prompt"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := engineconfig.Default()
	cfg.Chunking.MaxChunkSize = 500
	e, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEngine_IndexFileThenSearchFindsRelevantChunk(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.IndexFile(ctx, "animals.go", "This is a document about cats and dogs", IndexOptions{}, nil)
	require.NoError(t, err)
	_, err = e.IndexFile(ctx, "langs.go", "Another document about programming languages", IndexOptions{}, nil)
	require.NoError(t, err)
	_, err = e.IndexFile(ctx, "ml.go", "A document talking about machine learning and artificial intelligence", IndexOptions{}, nil)
	require.NoError(t, err)

	results, err := e.Search(ctx, "machine learning", SearchOptions{IncludeContent: true}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Content, "machine learning")
}

func TestEngine_SearchOnEmptyCorpusReturnsEmpty(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	results, err := e.Search(context.Background(), "anything", SearchOptions{}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_IndexFilesCollectsPerFileErrorsWithoutAborting(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	e.SetDefaultProviderID("missing-provider")

	result := e.IndexFiles(context.Background(), map[string]string{
		"a.go": "package a",
		"b.go": "package b",
	}, IndexOptions{}, nil)

	assert.Equal(t, 0, result.FilesProcessed)
	assert.Len(t, result.Errors, 2)
}

func TestEngine_BuildPromptTrimsToSingleSnippetUnderTightBudget(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	ctx := context.Background()

	// Three files of 120 words each: every file is a single chunk costing
	// ceil(120*1.3)=156 tokens, and the budget is 1000-500-200=300, so only
	// one snippet fits.
	content := strings.Repeat("cat ", 120)
	for _, path := range []string{"a.go", "b.go", "c.go"} {
		_, err := e.IndexFile(ctx, path, content, IndexOptions{}, nil)
		require.NoError(t, err)
	}

	result, err := e.BuildPrompt(ctx, "cat", BuildPromptOptions{
		Capabilities: prompt.ModelCapabilities{ContextWindow: 1000, MaxOutputTokens: 200, SupportsSystemMessage: true},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Metadata.IncludedSnippets)
	assert.Equal(t, 3, result.Metadata.TotalSnippets)
}

func TestEngine_ContextScopeChildInheritsAndOverrides(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	root := e.RootScope()
	require.NoError(t, e.SetContextValue(root, "language", "go"))

	child, err := e.CreateChildScope(root)
	require.NoError(t, err)
	require.NoError(t, e.SetContextValue(child, "language", "python"))

	v, ok := e.GetContextValue(child, "language")
	require.True(t, ok)
	assert.Equal(t, "python", v)

	rootV, _ := e.GetContextValue(root, "language")
	assert.Equal(t, "go", rootV)

	assert.NoError(t, e.DisposeScope(child))
	assert.Error(t, e.DisposeScope(root))
}

func TestEngine_CollectAllValuesMergesChildOverRoot(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	root := e.RootScope()
	require.NoError(t, e.SetContextValue(root, "rootKey", "v"))

	child, err := e.CreateChildScope(root)
	require.NoError(t, err)
	require.NoError(t, e.SetContextValue(child, "childKey", "c"))
	require.NoError(t, e.SetContextValue(child, "rootKey", "v2"))

	values, err := e.CollectAllValues(child)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"rootKey": "v2", "childKey": "c"}, values)
}

type fakeTextModel struct {
	lines []string
}

func (m fakeTextModel) GetLineContent(line int) string {
	if line < 1 || line > len(m.lines) {
		return ""
	}
	return m.lines[line-1]
}
func (m fakeTextModel) GetLineCount() int      { return len(m.lines) }
func (m fakeTextModel) GetLanguageId() string { return "go" }

func TestEngine_GatherLocalContextReturnsExactLine(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	model := fakeTextModel{lines: []string{"func a() {", "  return 1", "}"}}

	snippets := e.GatherLocalContext(model, localcontext.Position{Line: 2, Column: 0}, nil)

	found := false
	for _, s := range snippets {
		if s.Kind == localcontext.KindExact {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLanguageForPath_KnownAndUnknownExtensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "go", LanguageForPath("main.go"))
	assert.Equal(t, "typescript", LanguageForPath("app.tsx"))
	assert.Equal(t, "plaintext", LanguageForPath("data.bin"))
}

func TestMatchesPatterns_ExcludeWinsOverInclude(t *testing.T) {
	t.Parallel()

	assert.False(t, matchesPatterns("vendor/lib.go", []string{"**/*.go"}, []string{"vendor/**"}))
	assert.True(t, matchesPatterns("src/lib.go", []string{"**/*.go"}, []string{"vendor/**"}))
}
