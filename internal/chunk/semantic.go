package chunk

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/cortexctx/internal/cancel"
)

// defaultSentenceBoundary approximates the spec's lookbehind delimiter
// (?<=[.?!]|\n)\s+ without relying on lookbehind, which RE2 (and therefore
// Go's regexp package) does not support: it matches a sentence terminator
// followed by whitespace, and the split point is placed after the
// terminator but before the whitespace, exactly where the lookbehind would
// have matched.
var defaultSentenceBoundary = regexp.MustCompile(`[.?!\n]\s+`)

// semanticChunker splits text into semantic units with semanticSplitUnits,
// then accumulates consecutive units into a chunk until the next unit would
// exceed maxChunkSize.
type semanticChunker struct {
	maxChunkSize int
	delimiter    *regexp.Regexp
}

// NewSemanticChunker creates a Chunker using the semantic strategy. A nil
// delimiter falls back to defaultSentenceBoundary.
func NewSemanticChunker(maxChunkSize int, delimiter *regexp.Regexp) Chunker {
	if delimiter == nil {
		delimiter = defaultSentenceBoundary
	}
	return &semanticChunker{maxChunkSize: maxChunkSize, delimiter: delimiter}
}

func (c *semanticChunker) Chunk(content string, meta Metadata, token *cancel.Token) ([]Chunk, error) {
	if content == "" {
		return []Chunk{}, nil
	}

	units := splitUnits(content, c.delimiter)

	var chunks []Chunk
	var current strings.Builder
	currentStartLine := meta.StartLine
	lineOffset := meta.StartLine
	index := 0

	flush := func() {
		if current.Len() == 0 {
			return
		}
		text := current.String()
		m := meta
		m.StartLine = currentStartLine
		m.EndLine = lineOffset
		chunks = append(chunks, newChunk(text, m, index))
		index++
		current.Reset()
	}

	for _, u := range units {
		if token.IsCancellationRequested() {
			flush()
			return chunks, nil
		}

		if current.Len() > 0 && current.Len()+len(u) > c.maxChunkSize {
			flush()
			currentStartLine = lineOffset
		}
		current.WriteString(u)
		lineOffset += strings.Count(u, "\n")
	}
	flush()

	return chunks, nil
}

// splitUnits splits content on pattern, keeping the terminator character
// attached to the preceding unit and discarding the matched whitespace run,
// mirroring the lookbehind-based delimiter semantics.
func splitUnits(content string, pattern *regexp.Regexp) []string {
	locs := pattern.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return []string{content}
	}

	var units []string
	prev := 0
	for _, loc := range locs {
		splitAt := loc[0] + 1 // keep the terminator, drop the whitespace run
		if splitAt > len(content) {
			splitAt = len(content)
		}
		units = append(units, content[prev:splitAt])
		prev = loc[1]
	}
	if prev < len(content) {
		units = append(units, content[prev:])
	}
	return units
}
