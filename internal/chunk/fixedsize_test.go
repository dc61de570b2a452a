package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedSizeChunker_ShortContentYieldsOneChunk(t *testing.T) {
	t.Parallel()

	c := NewFixedSizeChunker(100, 10)
	chunks, err := c.Chunk("short text", Metadata{}, nil)

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Content)
}

func TestFixedSizeChunker_EmptyContentYieldsNoChunks(t *testing.T) {
	t.Parallel()

	c := NewFixedSizeChunker(100, 10)
	chunks, err := c.Chunk("", Metadata{}, nil)

	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestFixedSizeChunker_SplitsOnParagraphBoundary(t *testing.T) {
	t.Parallel()

	para := strings.Repeat("word ", 10) // 50 chars
	content := para + "\n\n" + para + "\n\n" + para

	c := NewFixedSizeChunker(60, 0)
	chunks, err := c.Chunk(content, Metadata{}, nil)

	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	// No chunk exceeds max size by more than the boundary search window.
	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Content), 60+100)
	}
}

func TestFixedSizeChunker_OverlapIsPrepended(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("a", 300)
	c := NewFixedSizeChunker(100, 20)
	chunks, err := c.Chunk(content, Metadata{}, nil)

	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	// Second chunk should start with the overlap tail of the first.
	firstTail := chunks[0].Content[len(chunks[0].Content)-20:]
	assert.True(t, strings.HasPrefix(chunks[1].Content, firstTail))
}

func TestFixedSizeChunker_IdempotentUnderEqualInputs(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("hello world. ", 50)
	c := NewFixedSizeChunker(120, 10)

	a, err := c.Chunk(content, Metadata{Type: "code", FileName: "f.go"}, nil)
	require.NoError(t, err)
	b, err := c.Chunk(content, Metadata{Type: "code", FileName: "f.go"}, nil)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.Equal(t, a[i].Content, b[i].Content)
	}
}

func TestFixedSizeChunker_OverlapGreaterThanMaxIsClamped(t *testing.T) {
	t.Parallel()

	// overlap >= maxChunkSize must not produce negative progress (spec.md §9 (b)).
	c := NewFixedSizeChunker(50, 1000)
	chunks, err := c.Chunk(strings.Repeat("x", 500), Metadata{}, nil)

	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}
