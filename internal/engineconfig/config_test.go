package engineconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_HasSaneChunkingDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()

	assert.Equal(t, 2000, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 100, cfg.Chunking.Overlap)
	assert.Equal(t, "fixed_size", cfg.Chunking.DefaultStrategy)
}

func TestLoader_LoadWithNoConfigFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	l := NewLoader(t.TempDir())
	cfg, err := l.Load()

	assert.NoError(t, err)
	assert.Equal(t, Default().Chunking, cfg.Chunking)
	assert.Equal(t, Default().Embedding.DefaultProviderID, cfg.Embedding.DefaultProviderID)
}
