package chunk

import (
	"context"

	"github.com/mvp-joe/cortexctx/internal/cancel"
	"github.com/mvp-joe/cortexctx/internal/treesitter"
)

// astChunker emits one chunk per chunkable syntax-tree node (function,
// class, method, type, interface, enum — whichever the language's table in
// treesitter.ChunkableKinds names), skipping nodes smaller than
// minChunkSize. Grounded on spec.md §4.1's AST strategy and the teacher's
// multiLanguageParser dispatch.
type astChunker struct {
	facade       treesitter.Facade
	minChunkSize int
}

// NewASTChunker creates a Chunker using the syntax-tree strategy. facade
// must not be nil. The chunk Registry only builds this chunker when a
// facade is wired (passed to the orchestrator's New or RegisterASTParser);
// otherwise it serves the AST strategy with a whole-content fallback
// chunker.
func NewASTChunker(facade treesitter.Facade, minChunkSize int) Chunker {
	return &astChunker{facade: facade, minChunkSize: minChunkSize}
}

func (c *astChunker) Chunk(content string, meta Metadata, token *cancel.Token) ([]Chunk, error) {
	model := stringModel{text: content, language: meta.Language}

	result, err := c.facade.Parse(context.Background(), model, token)
	if err != nil || result == nil || result.Root == nil {
		return []Chunk{c.fallbackChunk(content, meta)}, nil
	}
	if result.Fallback {
		return []Chunk{c.fallbackChunk(content, meta)}, nil
	}

	kinds := treesitter.ChunkableKinds(meta.Language)
	if len(kinds) == 0 {
		return []Chunk{c.fallbackChunk(content, meta)}, nil
	}

	var chunks []Chunk
	index := 0
	var walk func(n *treesitter.Node, parentID string)
	walk = func(n *treesitter.Node, parentID string) {
		if token.IsCancellationRequested() {
			return
		}
		for _, child := range n.Children {
			genericKind, ok := kinds[child.Type]
			if !ok {
				walk(child, parentID)
				continue
			}

			text := child.Text
			if len(text) < c.minChunkSize {
				continue
			}

			m := meta
			m.StartLine = child.StartPosition.Row
			m.EndLine = child.EndPosition.Row
			m.Type = genericKind
			m.ParentID = parentID
			m.Extra = map[string]any{
				"symbolKind": genericKind,
				"signature":  declarationLine(text),
			}

			ch := newChunk(text, m, index)
			index++
			chunks = append(chunks, ch)

			walk(child, ch.ID)
		}
	}
	walk(result.Root, "")

	if len(chunks) == 0 {
		return []Chunk{c.fallbackChunk(content, meta)}, nil
	}
	return chunks, nil
}

// declarationLine extracts a chunk's first line as its signature string,
// mirroring the teacher's processFuncDecl/processTypeSpec convention of
// recording a declaration's header separately from its full body.
func declarationLine(text string) string {
	for i, r := range text {
		if r == '\n' {
			return text[:i]
		}
	}
	return text
}

func (c *astChunker) fallbackChunk(content string, meta Metadata) Chunk {
	m := meta
	if m.Extra == nil {
		m.Extra = map[string]any{}
	}
	m.Extra["fallback"] = true
	return newChunk(content, m, 0)
}

// stringModel adapts a raw (content, language) pair to treesitter.TextModel
// so the AST chunker can reuse the same Parse entry point as the gatherer
// and ranker.
type stringModel struct {
	text     string
	language string
}

func (m stringModel) GetText() string       { return m.text }
func (m stringModel) GetLanguageId() string  { return m.language }
func (m stringModel) GetLineCount() int {
	if m.text == "" {
		return 0
	}
	count := 1
	for _, r := range m.text {
		if r == '\n' {
			count++
		}
	}
	return count
}
func (m stringModel) GetLineContent(line int) string {
	lines := splitLines(m.text)
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}
