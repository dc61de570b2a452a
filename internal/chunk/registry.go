package chunk

import (
	"github.com/mvp-joe/cortexctx/internal/cancel"
	"github.com/mvp-joe/cortexctx/internal/treesitter"
)

// Options configures the three strategies; orchestrator.indexFile (spec.md
// §6) selects one via options.chunkingStrategy.
type Options struct {
	MaxChunkSize int
	MinChunkSize int // AST strategy only
	Overlap      int // fixed-size strategy only
}

// DefaultOptions mirrors the teacher's chunking defaults
// (internal/config/config.go's ChunkingConfig: 2000 chars, 100 overlap).
func DefaultOptions() Options {
	return Options{MaxChunkSize: 2000, MinChunkSize: 50, Overlap: 100}
}

// Registry holds one Chunker per Strategy, the "mapping from variant tag to
// implementation" spec.md §9 calls for in place of the source's deep
// inheritance hierarchy.
type Registry struct {
	chunkers map[Strategy]Chunker
}

// NewRegistry builds the three stock strategies. facade may be nil; the AST
// strategy then always falls back to a single whole-content chunk (spec.md
// §7 ParseFailure handling, generalized to "no parser wired at all").
func NewRegistry(opts Options, facade treesitter.Facade) *Registry {
	r := &Registry{chunkers: make(map[Strategy]Chunker, 3)}
	r.chunkers[FixedSize] = NewFixedSizeChunker(opts.MaxChunkSize, opts.Overlap)
	r.chunkers[Semantic] = NewSemanticChunker(opts.MaxChunkSize, nil)
	if facade != nil {
		r.chunkers[AST] = NewASTChunker(facade, opts.MinChunkSize)
	} else {
		r.chunkers[AST] = noopFallbackChunker{}
	}
	return r
}

// Get resolves a strategy, defaulting to FixedSize for an unknown tag.
func (r *Registry) Get(s Strategy) Chunker {
	if c, ok := r.chunkers[s]; ok {
		return c
	}
	return r.chunkers[FixedSize]
}

// noopFallbackChunker stands in for the AST strategy when no syntax-tree
// facade has been registered: it always produces the single fallback chunk,
// never an error, matching spec.md §4.1's "never throws" guarantee.
type noopFallbackChunker struct{}

func (noopFallbackChunker) Chunk(content string, meta Metadata, _ *cancel.Token) ([]Chunk, error) {
	m := meta
	if m.Extra == nil {
		m.Extra = map[string]any{}
	}
	m.Extra["fallback"] = true
	return []Chunk{newChunk(content, m, 0)}, nil
}
