package chunk

import (
	"strings"

	"github.com/mvp-joe/cortexctx/internal/cancel"
)

// boundaryPreference lists the cut markers fixedSizeChunker searches for, in
// the order spec.md §4.1 prefers them.
var boundaryPreference = []string{"\n\n", "\n", ". ", ", ", " "}

const boundarySearchWindow = 100

// fixedSizeChunker emits non-overlapping or overlapping slices of roughly
// maxChunkSize characters, preferring to cut on a natural boundary within
// ±boundarySearchWindow characters of the raw cut point. The chosen
// boundary may lie after the raw cut, so a slice can exceed maxChunkSize by
// up to boundarySearchWindow characters; a configured overlap is prepended
// on top of that.
type fixedSizeChunker struct {
	maxChunkSize int
	overlap      int
}

// NewFixedSizeChunker creates a Chunker using the fixed-size strategy.
// overlap must be smaller than maxChunkSize (spec.md §9 open question (b));
// callers are expected to enforce overlap < maxChunkSize at configuration
// time, never at chunk time, so this constructor does not fail loudly — it
// simply clamps to avoid non-terminating progress.
func NewFixedSizeChunker(maxChunkSize, overlap int) Chunker {
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 2
	}
	if overlap < 0 {
		overlap = 0
	}
	return &fixedSizeChunker{maxChunkSize: maxChunkSize, overlap: overlap}
}

func (c *fixedSizeChunker) Chunk(content string, meta Metadata, token *cancel.Token) ([]Chunk, error) {
	if content == "" {
		return []Chunk{}, nil
	}
	if len(content) <= c.maxChunkSize {
		return []Chunk{newChunk(content, meta, 0)}, nil
	}

	var chunks []Chunk
	pos := 0
	index := 0
	prevOverlapTail := ""

	for pos < len(content) {
		if token.IsCancellationRequested() {
			return chunks, nil
		}

		remaining := len(content) - pos
		end := pos + c.maxChunkSize
		if end >= len(content) {
			end = len(content)
		} else {
			end = findBoundary(content, pos, end)
		}
		if end <= pos {
			// No boundary progress would occur; fall back to the raw cut.
			end = pos + c.maxChunkSize
			if end > len(content) {
				end = len(content)
			}
		}

		piece := content[pos:end]
		text := prevOverlapTail + piece
		chunks = append(chunks, newChunk(text, withLines(meta, pos, end, content), index))
		index++

		if end >= len(content) {
			break
		}

		if c.overlap > 0 {
			overlapStart := end - c.overlap
			if overlapStart < pos {
				overlapStart = pos
			}
			prevOverlapTail = content[overlapStart:end]
		} else {
			prevOverlapTail = ""
		}

		pos = end
		_ = remaining
	}

	return chunks, nil
}

// findBoundary searches ±boundarySearchWindow characters around rawEnd for
// the best-preferred cut marker, returning the index just after the marker.
// If nothing is found in range, rawEnd is returned unchanged (the fallback
// at the raw max spec.md §4.1 describes).
func findBoundary(content string, start, rawEnd int) int {
	lo := rawEnd - boundarySearchWindow
	if lo < start {
		lo = start
	}
	hi := rawEnd + boundarySearchWindow
	if hi > len(content) {
		hi = len(content)
	}
	window := content[lo:hi]
	rawOffset := rawEnd - lo

	for _, marker := range boundaryPreference {
		if best := bestMatchNear(window, marker, rawOffset); best >= 0 {
			return lo + best + len(marker)
		}
	}
	return rawEnd
}

// bestMatchNear returns the offset (within window) of the occurrence of
// marker closest to target, or -1 if none exists.
func bestMatchNear(window, marker string, target int) int {
	best := -1
	bestDist := len(window) + 1
	start := 0
	for {
		idx := strings.Index(window[start:], marker)
		if idx < 0 {
			break
		}
		abs := start + idx
		dist := abs - target
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			bestDist = dist
			best = abs
		}
		start = abs + len(marker)
		if start >= len(window) {
			break
		}
	}
	return best
}

func withLines(meta Metadata, start, end int, content string) Metadata {
	m := meta
	m.StartLine = meta.StartLine + strings.Count(content[:start], "\n")
	m.EndLine = meta.StartLine + strings.Count(content[:end], "\n")
	return m
}

func newChunk(content string, meta Metadata, index int) Chunk {
	return Chunk{
		ID:       NewID(content, index, meta.Type, meta.FileName),
		Content:  content,
		Metadata: meta,
	}
}
