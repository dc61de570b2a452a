package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemanticChunker_AccumulatesUntilLimit(t *testing.T) {
	t.Parallel()

	content := "One. Two. Three. Four. Five."
	c := NewSemanticChunker(10, nil)
	chunks, err := c.Chunk(content, Metadata{}, nil)

	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.NotEmpty(t, ch.Content)
	}
	// Reassembling the chunk contents (they omit the split whitespace) should
	// still contain every sentence's visible text.
	joined := strings.Join(chunkTexts(chunks), "")
	for _, sentence := range []string{"One.", "Two.", "Three.", "Four.", "Five."} {
		assert.Contains(t, joined, sentence)
	}
}

func TestSemanticChunker_EmptyContentYieldsNoChunks(t *testing.T) {
	t.Parallel()

	c := NewSemanticChunker(100, nil)
	chunks, err := c.Chunk("", Metadata{}, nil)

	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSemanticChunker_SingleUnitBelowLimitYieldsOneChunk(t *testing.T) {
	t.Parallel()

	c := NewSemanticChunker(1000, nil)
	chunks, err := c.Chunk("Just one short sentence.", Metadata{}, nil)

	require.NoError(t, err)
	require.Len(t, chunks, 1)
}

func TestSemanticChunker_IdempotentUnderEqualInputs(t *testing.T) {
	t.Parallel()

	content := "First sentence. Second sentence. Third sentence.\nFourth line."
	c := NewSemanticChunker(15, nil)

	a, err := c.Chunk(content, Metadata{FileName: "doc.txt"}, nil)
	require.NoError(t, err)
	b, err := c.Chunk(content, Metadata{FileName: "doc.txt"}, nil)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
}

func chunkTexts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}
