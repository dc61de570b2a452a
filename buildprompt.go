package cortexctx

import (
	"context"

	"github.com/mvp-joe/cortexctx/internal/cancel"
	"github.com/mvp-joe/cortexctx/internal/prompt"
)

// BuildPromptOptions configures buildPrompt (spec.md §6): it composes a
// search call with the prompt builder's model capabilities.
type BuildPromptOptions struct {
	Search       SearchOptions
	Capabilities prompt.ModelCapabilities
}

// BuildPrompt runs Search, converts the ranked hits into prompt.Snippets,
// and assembles the final system/user message pair. Cancellation before
// search returns an empty Result (zero snippets, zero estimated tokens).
func (e *Engine) BuildPrompt(ctx context.Context, query string, opts BuildPromptOptions, token *cancel.Token) (prompt.Result, error) {
	if token.IsCancellationRequested() {
		return prompt.Result{}, nil
	}

	searchOpts := opts.Search
	searchOpts.IncludeContent = true
	searchOpts.IncludeMetadata = true

	hits, err := e.Search(ctx, query, searchOpts, token)
	if err != nil {
		return prompt.Result{}, err
	}
	if token.IsCancellationRequested() {
		return prompt.Result{}, nil
	}

	snippets := make([]prompt.Snippet, 0, len(hits))
	for _, h := range hits {
		meta := e.sparseDocs[h.ChunkID]
		fileName := meta.FileName
		if fileName == "" {
			fileName = meta.FilePath
		}
		snippets = append(snippets, prompt.Snippet{
			FileName:  fileName,
			Language:  meta.Language,
			Content:   e.content[h.ChunkID],
			StartLine: meta.StartLine,
			EndLine:   meta.EndLine,
			Relevance: h.Score,
		})
	}

	return prompt.Build(query, snippets, opts.Capabilities), nil
}
