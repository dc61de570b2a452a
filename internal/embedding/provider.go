// Package embedding is the provider registry spec.md §4.3 describes:
// dispatch-by-id over pluggable embedding backends. Grounded on the
// teacher's internal/embed/provider.go Provider interface (Embed,
// Dimensions, Close) and mock.go's deterministic hash-based test provider,
// generalized from a single statically-wired provider to a registry keyed
// by string id.
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mvp-joe/cortexctx/internal/cancel"
)

// ErrNoSuchProvider is returned when ComputeEmbeddings is asked to dispatch
// to an id that was never registered.
var ErrNoSuchProvider = errors.New("embedding: no such provider")

// Provider is a pluggable embedding backend. Implementations are
// responsible for their own batching; the registry does not batch across
// providers (spec.md §4.3).
type Provider interface {
	Dimensions() int
	ModelName() string
	ComputeEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Registry dispatches ComputeEmbeddings calls to a named Provider.
type Registry struct {
	providers map[string]Provider
	defaultID string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds or replaces the provider for id.
func (r *Registry) Register(id string, p Provider) {
	r.providers[id] = p
}

// SetDefaultProviderID records which id ComputeEmbeddings should use when
// callers do not specify one explicitly (the orchestrator's
// setDefaultProviderId, spec.md §6).
func (r *Registry) SetDefaultProviderID(id string) {
	r.defaultID = id
}

// DefaultProviderID returns the currently configured default, or "" if none
// has been set.
func (r *Registry) DefaultProviderID() string {
	return r.defaultID
}

// ComputeEmbeddings dispatches to the provider registered under id.
// Cancellation checked before dispatch returns an empty slice; cancellation
// during provider work is the provider's own responsibility (best-effort,
// spec.md §4.3).
func (r *Registry) ComputeEmbeddings(ctx context.Context, id string, texts []string, token *cancel.Token) ([][]float32, error) {
	if token.IsCancellationRequested() {
		return [][]float32{}, nil
	}

	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchProvider, id)
	}
	return p.ComputeEmbeddings(ctx, texts)
}

// MockProvider generates deterministic embeddings from a SHA-256 hash of
// each input text, for tests and for environments without a real embedding
// backend wired. Mirrors the teacher's embed.MockProvider exactly, adapted
// to the Provider interface above.
type MockProvider struct {
	dims  int
	model string
}

// NewMockProvider creates a mock provider with the given dimensionality.
func NewMockProvider(dims int) *MockProvider {
	if dims <= 0 {
		dims = 384
	}
	return &MockProvider{dims: dims, model: "mock-hash-embedder"}
}

func (p *MockProvider) Dimensions() int  { return p.dims }
func (p *MockProvider) ModelName() string { return p.model }

func (p *MockProvider) ComputeEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		hash := sha256.Sum256([]byte(text))
		vec := make([]float32, p.dims)
		for j := 0; j < p.dims; j++ {
			offset := (j * 4) % len(hash)
			val := binary.BigEndian.Uint32(hash[offset : offset+4])
			vec[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
		}
		out[i] = vec
	}
	return out, nil
}
