package cortexctx

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mvp-joe/cortexctx/internal/cancel"
	"github.com/mvp-joe/cortexctx/internal/query"
	"github.com/mvp-joe/cortexctx/internal/rank"
	"github.com/mvp-joe/cortexctx/internal/sparse"
)

// SearchOptions configures a search call (spec.md §6).
type SearchOptions struct {
	TopK              int
	Threshold         float64
	ProviderID        string
	IncludeSimilarity bool
	IncludeContent    bool
	IncludeMetadata   bool
}

// DefaultSearchOptions matches spec.md §6's stated defaults: topK=5,
// threshold=0.7.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{TopK: 5, Threshold: defaultVectorThreshold}
}

const defaultVectorThreshold = 0.7

// SearchResult is one ranked hit. Similarity/Content/Metadata are populated
// only when the matching Include* option was set.
type SearchResult struct {
	ChunkID    string
	Score      float64
	Factors    rank.Factors
	Similarity float64
	Content    string
	Metadata   map[string]any
}

// candidatePoolMultiplier is the widening factor applied to TopK when selecting
// the candidate pool handed to the ranker: vector top-K and TF-IDF top
// results are merged before ranking narrows back down to TopK (spec.md §2's
// "vector top-K (+ optional TF-IDF merge) -> rank -> return").
const candidatePoolMultiplier = 4

// Search embeds the query, retrieves a vector top-K and a TF-IDF merge
// candidate pool, ranks the union with the multi-factor ranker, and returns
// the top opts.TopK results. An empty corpus or a cancellation before the
// first suspension returns an empty slice.
func (e *Engine) Search(ctx context.Context, rawQuery string, opts SearchOptions, token *cancel.Token) ([]SearchResult, error) {
	if token.IsCancellationRequested() {
		return []SearchResult{}, nil
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultSearchOptions().TopK
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultSearchOptions().Threshold
	}
	if len(e.content) == 0 {
		return []SearchResult{}, nil
	}

	cacheKey := fmt.Sprintf("search:%s:%d:%.3f:%s", rawQuery, opts.TopK, opts.Threshold, opts.ProviderID)
	if cached, ok := e.cache.Get(cacheKey); ok {
		var results []SearchResult
		if err := json.Unmarshal(cached, &results); err == nil {
			return applyIncludeOptions(results, opts), nil
		}
	}

	parsed := query.ParseQuery(rawQuery)
	expansion := query.ExpandQuery(parsed)
	searchText := strings.Join(append(append([]string{}, parsed.Phrases...), parsed.Terms...), " ")
	if searchText == "" {
		searchText = rawQuery
	}

	providerID := opts.ProviderID
	if providerID == "" {
		providerID = e.embeddings.DefaultProviderID()
	}

	var queryEmbedding []float32
	vecs, err := e.embeddings.ComputeEmbeddings(ctx, providerID, []string{searchText}, token)
	if err != nil {
		return nil, fmt.Errorf("cortexctx: %w: %v", ErrEmbeddingFailure, err)
	}
	if len(vecs) > 0 {
		queryEmbedding = vecs[0]
	}
	if token.IsCancellationRequested() {
		return []SearchResult{}, nil
	}

	poolSize := opts.TopK * candidatePoolMultiplier
	candidates := make(map[string]struct{})
	similarities := make(map[string]float64)

	if len(queryEmbedding) > 0 {
		matches, err := e.vectors.FindSimilar(queryEmbedding, poolSize, opts.Threshold)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		for _, m := range matches {
			candidates[m.Record.ID] = struct{}{}
			similarities[m.Record.ID] = m.Similarity
		}
	}

	sparseScores := make(map[string]float64)
	for _, s := range sparse.Normalize(e.sparseIdx.Score(searchText, token)) {
		if id, ok := e.sparseRefs[s.Chunk]; ok {
			candidates[id] = struct{}{}
			sparseScores[id] = s.Score
		}
	}
	if token.IsCancellationRequested() {
		return []SearchResult{}, nil
	}

	if len(candidates) == 0 {
		return []SearchResult{}, nil
	}

	caps := query.NewMatcherCapabilities(parsed)
	if caps.SupportsFilters {
		if wantType, ok := parsed.Filters["type"]; ok {
			for id := range candidates {
				if e.sparseDocs[id].Type != wantType {
					delete(candidates, id)
				}
			}
		}
	}
	if len(candidates) == 0 {
		return []SearchResult{}, nil
	}

	ids := make([]string, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}

	scoreFn := func(id string, q string) rank.Factors {
		content := e.content[id]
		meta := e.sparseDocs[id]
		nodeName := meta.FileName
		if sig, ok := meta.Extra["signature"].(string); ok && sig != "" {
			nodeName = sig
		}
		fuzzy := rank.FuzzyScore(content, q)
		if caps.SupportsExact && query.MatchContext(parsed, expansion, content) == query.MatchExact {
			fuzzy = 1.0
		}
		var definitionProximity float64
		if meta.ParentID != "" {
			definitionProximity = e.symbolGraph.DefinitionProximity(meta.ParentID, id)
		}
		return rank.Factors{
			TfIdfScore:     sparseScores[id],
			FuzzyScore:     fuzzy,
			ProximityScore: rank.FuzzyScore(strings.Join(expansion, " "), q),
			SemanticScore:  rank.SemanticScore(queryEmbedding, e.embeds[id], content, q),
			AstRelevance:   rank.AstRelevance(meta.Type, nodeName, q),
			Extra:          map[string]float64{"definitionProximity": definitionProximity},
		}
	}

	ranked := rank.Rank(ids, searchText, scoreFn, rank.Options{
		Weights:       e.prompts.weights,
		Normalization: e.prompts.normalization,
		MinScore:      e.prompts.minScore,
	})

	if len(ranked) > opts.TopK {
		ranked = ranked[:opts.TopK]
	}

	results := make([]SearchResult, 0, len(ranked))
	for _, r := range ranked {
		meta := e.sparseDocs[r.Item]
		results = append(results, SearchResult{
			ChunkID:    r.Item,
			Score:      r.Score,
			Factors:    r.Factors,
			Similarity: similarities[r.Item],
			Content:    e.content[r.Item],
			Metadata: map[string]any{
				"filePath":  meta.FilePath,
				"fileName":  meta.FileName,
				"language":  meta.Language,
				"startLine": meta.StartLine,
				"endLine":   meta.EndLine,
				"type":      meta.Type,
			},
		})
	}

	if encoded, err := json.Marshal(results); err == nil {
		e.cache.Set(cacheKey, encoded)
	}

	return applyIncludeOptions(results, opts), nil
}

// applyIncludeOptions clears the fields a caller did not ask for, whether
// results came from the ranker just now or from the cache (which always
// stores the full shape).
func applyIncludeOptions(results []SearchResult, opts SearchOptions) []SearchResult {
	out := make([]SearchResult, len(results))
	for i, r := range results {
		if opts.IncludeSimilarity {
			out[i].Similarity = r.Similarity
		}
		if opts.IncludeContent {
			out[i].Content = r.Content
		}
		if opts.IncludeMetadata {
			out[i].Metadata = r.Metadata
		}
		out[i].ChunkID = r.ChunkID
		out[i].Score = r.Score
		out[i].Factors = r.Factors
	}
	return out
}
