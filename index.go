package cortexctx

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"github.com/mvp-joe/cortexctx/internal/cancel"
	"github.com/mvp-joe/cortexctx/internal/chunk"
	"github.com/mvp-joe/cortexctx/internal/sparse"
	"github.com/mvp-joe/cortexctx/internal/vectorindex"
)

// languageByExtension is the fixed extension→language-id table spec.md §6
// names. Grounded on the teacher's internal/indexer/parser.go language
// switch, extended with the non-code ids (json/markdown/yaml/...) the
// teacher's FileDiscovery treats as "docs" but the spec's table lists
// uniformly.
var languageByExtension = map[string]string{
	"js":    "javascript",
	"ts":    "typescript",
	"jsx":   "javascript",
	"tsx":   "typescript",
	"py":    "python",
	"java":  "java",
	"c":     "c",
	"cpp":   "cpp",
	"cs":    "csharp",
	"go":    "go",
	"rs":    "rust",
	"php":   "php",
	"rb":    "ruby",
	"swift": "swift",
	"kt":    "kotlin",
	"scala": "scala",
	"sh":    "shell",
	"html":  "html",
	"css":   "css",
	"scss":  "scss",
	"json":  "json",
	"md":    "markdown",
	"yaml":  "yaml",
	"yml":   "yaml",
	"xml":   "xml",
	"sql":   "sql",
}

// LanguageForPath resolves a file's language id from its extension,
// defaulting to "plaintext" for anything not in the fixed table.
func LanguageForPath(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if lang, ok := languageByExtension[strings.ToLower(ext)]; ok {
		return lang
	}
	return "plaintext"
}

// IndexOptions configures a single indexFile/indexContent call.
type IndexOptions struct {
	IncludePatterns  []string
	ExcludePatterns  []string
	ChunkingStrategy chunk.Strategy
	ProviderID       string
	ExtractMetadata  bool
}

// matchesPatterns applies include/exclude glob filtering (spec.md §6),
// grounded on the teacher's internal/indexer/discovery.go FileDiscovery,
// generalized from a fixed code/docs/ignore triple to caller-supplied
// include/exclude lists.
func matchesPatterns(path string, includes, excludes []string) bool {
	for _, pattern := range excludes {
		if g, err := glob.Compile(pattern, '/'); err == nil && g.Match(path) {
			return false
		}
	}
	if len(includes) == 0 {
		return true
	}
	for _, pattern := range includes {
		if g, err := glob.Compile(pattern, '/'); err == nil && g.Match(path) {
			return true
		}
	}
	return false
}

// IndexingResult is returned by a multi-file indexing call (spec.md §7):
// individual file failures are collected, never abort the batch.
type IndexingResult struct {
	FilesProcessed int
	ChunksCreated  int
	Errors         []FileError
}

// FileError names which file failed and why.
type FileError struct {
	File  string
	Error error
}

// IndexFile chunks, embeds, and stores one file's content, returning its
// chunks. Cancellation before chunking returns an empty slice and no error
// (spec.md §5 cancellation semantics).
func (e *Engine) IndexFile(ctx context.Context, path, content string, opts IndexOptions, token *cancel.Token) ([]chunk.Chunk, error) {
	if token.IsCancellationRequested() {
		return []chunk.Chunk{}, nil
	}
	if !matchesPatterns(path, opts.IncludePatterns, opts.ExcludePatterns) {
		return []chunk.Chunk{}, nil
	}

	meta := chunk.Metadata{
		FileName: filepath.Base(path),
		FilePath: path,
		Language: LanguageForPath(path),
	}

	strategy := opts.ChunkingStrategy
	if strategy == "" {
		strategy = chunk.Strategy(e.cfg.Chunking.DefaultStrategy)
	}

	chunks, err := e.chunkers.Get(strategy).Chunk(content, meta, token)
	if err != nil {
		return nil, fmt.Errorf("cortexctx: chunk %q: %w", path, err)
	}
	if token.IsCancellationRequested() {
		return []chunk.Chunk{}, nil
	}

	if err := e.storeChunks(ctx, path, chunks, opts.ProviderID, token); err != nil {
		return nil, e.recordEmbeddingFailure(path, err)
	}
	return chunks, nil
}

// IndexContent indexes a single in-memory buffer (spec.md §6 indexContent),
// returning its first produced chunk or nil when the content yields none.
// Buffers without a stable FilePath (e.g. an unsaved editor buffer) get a
// freshly generated document key so re-indexing them never collides with an
// unrelated document under the sparse index.
func (e *Engine) IndexContent(ctx context.Context, content string, meta chunk.Metadata, opts IndexOptions, token *cancel.Token) (*chunk.Chunk, error) {
	if token.IsCancellationRequested() {
		return nil, nil
	}

	strategy := opts.ChunkingStrategy
	if strategy == "" {
		strategy = chunk.Strategy(e.cfg.Chunking.DefaultStrategy)
	}

	chunks, err := e.chunkers.Get(strategy).Chunk(content, meta, token)
	if err != nil {
		return nil, fmt.Errorf("cortexctx: chunk content: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}
	if token.IsCancellationRequested() {
		return nil, nil
	}

	docKey := meta.FilePath
	if docKey == "" {
		docKey = uuid.NewString()
	}

	if err := e.storeChunks(ctx, docKey, chunks, opts.ProviderID, token); err != nil {
		return nil, e.recordEmbeddingFailure(meta.FileName, err)
	}
	return &chunks[0], nil
}

// IndexFiles indexes a batch of (path, content) pairs, collecting
// per-file failures instead of aborting (spec.md §7's IndexingResult).
func (e *Engine) IndexFiles(ctx context.Context, files map[string]string, opts IndexOptions, token *cancel.Token) IndexingResult {
	var result IndexingResult
	for path, content := range files {
		if token.IsCancellationRequested() {
			break
		}
		chunks, err := e.IndexFile(ctx, path, content, opts, token)
		if err != nil {
			result.Errors = append(result.Errors, FileError{File: path, Error: err})
			continue
		}
		result.FilesProcessed++
		result.ChunksCreated += len(chunks)
	}
	return result
}

// storeChunks embeds and stores chunks belonging to a single document
// (docKey — typically a file path), updating the vector index, the sparse
// index, and the symbol graph together so the three stay in sync per
// document.
func (e *Engine) storeChunks(ctx context.Context, docKey string, chunks []chunk.Chunk, providerID string, token *cancel.Token) error {
	if len(chunks) == 0 {
		return nil
	}
	if providerID == "" {
		providerID = e.embeddings.DefaultProviderID()
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vecs, err := e.embeddings.ComputeEmbeddings(ctx, providerID, texts, token)
	if err != nil {
		return err
	}

	records := make([]vectorindex.Record, 0, len(chunks))
	for i, c := range chunks {
		e.content[c.ID] = c.Content
		e.sparseDocs[c.ID] = c.Metadata
		e.sparseRefs[sparse.ChunkRef{DocKey: docKey, ChunkIndex: i}] = c.ID

		if i < len(vecs) {
			e.embeds[c.ID] = vecs[i]
			records = append(records, vectorindex.Record{
				ID:        c.ID,
				Content:   c.Content,
				Embedding: vecs[i],
				Metadata:  map[string]any{"filePath": c.Metadata.FilePath, "language": c.Metadata.Language},
			})
		}

		if c.Metadata.ParentID != "" {
			e.symbolGraph.AddSymbol(c.Metadata.ParentID)
			e.symbolGraph.AddSymbol(c.ID)
			e.symbolGraph.AddReference(c.Metadata.ParentID, c.ID)
		} else if _, ok := c.Metadata.Extra["symbolKind"]; ok {
			e.symbolGraph.AddSymbol(c.ID)
		}
	}

	if len(records) > 0 {
		if err := e.vectors.Upsert(records); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	}

	e.sparseIdx.UpdateDocuments([]sparse.Document{{Key: docKey, TextChunks: texts}}, token)
	return nil
}
