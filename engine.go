// Package cortexctx is the orchestrator façade spec.md §6 names: the public
// surface wiring a chunker, an embedding provider registry, a vector index,
// a sparse index, a local-context gatherer, a ranker, a query processor,
// and a prompt builder into indexFile/indexContent/search/buildPrompt.
// Grounded on the teacher's internal/indexer/impl.go (a single struct
// holding every collaborator, constructed once via New) and its explicit
// dependency-injection style (spec.md §9: "pass a parser handle into the
// orchestrator at construction" rather than a package-level singleton).
package cortexctx

import (
	"errors"
	"fmt"
	"log"

	"github.com/mvp-joe/cortexctx/internal/cache"
	"github.com/mvp-joe/cortexctx/internal/chunk"
	"github.com/mvp-joe/cortexctx/internal/contextkey"
	"github.com/mvp-joe/cortexctx/internal/embedding"
	"github.com/mvp-joe/cortexctx/internal/engineconfig"
	"github.com/mvp-joe/cortexctx/internal/localcontext"
	"github.com/mvp-joe/cortexctx/internal/rank"
	"github.com/mvp-joe/cortexctx/internal/sparse"
	"github.com/mvp-joe/cortexctx/internal/treesitter"
	"github.com/mvp-joe/cortexctx/internal/vectorindex"
)

// Sentinel errors for the "surfaced" kinds spec.md §7 names. ParseFailure and
// Cancellation are deliberately absent: the former is recovered locally by
// the AST chunker, the latter is never an error (it returns a neutral
// typed result).
var (
	ErrStorageFailure   = errors.New("cortexctx: storage failure")
	ErrEmbeddingFailure = errors.New("cortexctx: embedding failure")
)

// Engine is the orchestrator. A zero Engine is not usable; build one with
// New.
type Engine struct {
	cfg *engineconfig.Config

	chunkers   *chunk.Registry
	facade     treesitter.Facade
	embeddings *embedding.Registry
	vectors    vectorindex.Index
	sparseIdx  *sparse.Index
	gatherer   *localcontext.Gatherer
	prompts    promptWeights
	cache      *cache.Cache

	symbolGraph *rank.SymbolGraph
	contextTree *contextkey.Tree

	sparseDocs map[string]chunk.Metadata  // chunk id -> metadata, for search result assembly
	content    map[string]string          // chunk id -> content
	embeds     map[string][]float32       // chunk id -> embedding
	sparseRefs map[sparse.ChunkRef]string // (docKey, chunkIndex) -> chunk id
}

type promptWeights struct {
	weights       rank.Weights
	normalization rank.NormalizationStrategy
	minScore      float64
}

// New builds an Engine from cfg. If facade is nil, the AST chunking
// strategy falls back to whole-content chunks (spec.md §4.1) and
// AstRelevance has no structural signal beyond node-kind defaults.
func New(cfg *engineconfig.Config, facade treesitter.Facade) (*Engine, error) {
	if cfg == nil {
		cfg = engineconfig.Default()
	}

	chunkOpts := chunk.Options{
		MaxChunkSize: cfg.Chunking.MaxChunkSize,
		MinChunkSize: cfg.Chunking.MinChunkSize,
		Overlap:      cfg.Chunking.Overlap,
	}

	policy := cache.DefaultPolicy()
	policy.MaxAge = cfg.Cache.MaxAge
	policy.MaxItems = cfg.Cache.MaxItems
	c, err := cache.New(policy, nil)
	if err != nil {
		return nil, fmt.Errorf("cortexctx: %w: %v", ErrStorageFailure, err)
	}

	e := &Engine{
		cfg:         cfg,
		chunkers:    chunk.NewRegistry(chunkOpts, facade),
		facade:      facade,
		embeddings:  embedding.NewRegistry(),
		vectors:     vectorindex.NewInMemoryIndex(),
		sparseIdx:   sparse.NewIndex(),
		gatherer:    localcontext.NewGatherer(cfg.LocalContext.LinesAbove, cfg.LocalContext.LinesBelow),
		cache:       c,
		symbolGraph: rank.NewSymbolGraph(),
		contextTree: contextkey.NewTree(),
		sparseDocs:  make(map[string]chunk.Metadata),
		content:     make(map[string]string),
		embeds:      make(map[string][]float32),
		sparseRefs:  make(map[sparse.ChunkRef]string),
	}
	e.prompts = promptWeights{
		weights: rank.Weights{
			"tfIdfScore":     cfg.RankWeights.TfIdfScore,
			"fuzzyScore":     cfg.RankWeights.FuzzyScore,
			"proximityScore": cfg.RankWeights.ProximityScore,
			"semanticScore":  cfg.RankWeights.SemanticScore,
			"astRelevance":   cfg.RankWeights.AstRelevance,
		},
		normalization: rank.NormalizationStrategy(cfg.RankWeights.Normalization),
		minScore:      cfg.RankWeights.MinScore,
	}

	e.embeddings.Register("mock", embedding.NewMockProvider(cfg.Embedding.Dimensions))
	e.embeddings.SetDefaultProviderID(cfg.Embedding.DefaultProviderID)

	return e, nil
}

// RegisterEmbeddingProvider names a new embedding provider (spec.md §6).
func (e *Engine) RegisterEmbeddingProvider(id string, p embedding.Provider) {
	e.embeddings.Register(id, p)
}

// SetDefaultProviderID selects which registered provider indexFile/search
// use when no per-call providerId is given.
func (e *Engine) SetDefaultProviderID(id string) {
	e.embeddings.SetDefaultProviderID(id)
}

// RegisterASTParser swaps in a new syntax-tree facade and rebuilds the
// chunk registry's AST strategy against it (spec.md §6
// registerASTParser).
func (e *Engine) RegisterASTParser(facade treesitter.Facade) {
	e.facade = facade
	e.chunkers = chunk.NewRegistry(chunk.Options{
		MaxChunkSize: e.cfg.Chunking.MaxChunkSize,
		MinChunkSize: e.cfg.Chunking.MinChunkSize,
		Overlap:      e.cfg.Chunking.Overlap,
	}, facade)
}

// Close releases the engine's cache resources.
func (e *Engine) Close() error {
	e.cache.Close()
	return nil
}

func (e *Engine) recordEmbeddingFailure(file string, err error) error {
	log.Printf("cortexctx: embedding failure for %q: %v", file, err)
	return fmt.Errorf("%w: %s: %v", ErrEmbeddingFailure, file, err)
}
