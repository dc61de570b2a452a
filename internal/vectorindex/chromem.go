package vectorindex

import (
	"context"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"
)

// ChromemIndex is the pluggable Index adapter backed by chromem-go,
// grounded on the teacher's internal/mcp/chromem_searcher.go: a single
// named collection guarded by a RWMutex, with per-call Upsert/Delete going
// straight to the live collection. There is no bulk-reload swap.
type ChromemIndex struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	dims       int
}

// NewChromemIndex creates a chromem-go-backed index with a single
// collection. Embeddings are supplied by callers (chromem's own embedding
// func is unused — this index stores precomputed vectors, matching
// spec.md's separation between the embedding registry and the vector
// store).
func NewChromemIndex(collectionName string) (*ChromemIndex, error) {
	db := chromem.NewDB()
	coll, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: create collection: %w", err)
	}
	return &ChromemIndex{db: db, collection: coll}, nil
}

func (idx *ChromemIndex) Upsert(records []Record) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, r := range records {
		if idx.dims == 0 {
			idx.dims = len(r.Embedding)
		} else if len(r.Embedding) != idx.dims {
			return fmt.Errorf("%w: record %q has %d dims, index has %d", ErrDimensionMismatch, r.ID, len(r.Embedding), idx.dims)
		}

		metadata := make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			if s, ok := v.(string); ok {
				metadata[k] = s
			}
		}

		doc := chromem.Document{
			ID:        r.ID,
			Content:   r.Content,
			Embedding: r.Embedding,
			Metadata:  metadata,
		}
		if err := idx.collection.AddDocument(context.Background(), doc); err != nil {
			return fmt.Errorf("vectorindex: add document %q: %w", r.ID, err)
		}
	}
	return nil
}

func (idx *ChromemIndex) Delete(ids []string) error {
	idx.mu.RLock()
	coll := idx.collection
	idx.mu.RUnlock()

	for _, id := range ids {
		// chromem returns an error for a missing id; reconciling deletes
		// against a caller's possibly-stale view is the caller's job, so
		// this is treated as best-effort (matches the teacher's
		// UpdateIncremental delete loop, which also swallows this case).
		_ = coll.Delete(context.Background(), nil, nil, id)
	}
	return nil
}

func (idx *ChromemIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.collection.Count()
}

func (idx *ChromemIndex) FindSimilar(queryEmbedding []float32, limit int, threshold float64) ([]Match, error) {
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	idx.mu.RLock()
	coll := idx.collection
	dims := idx.dims
	idx.mu.RUnlock()

	if dims != 0 && len(queryEmbedding) != dims {
		return nil, fmt.Errorf("%w: query has %d dims, index has %d", ErrDimensionMismatch, len(queryEmbedding), dims)
	}

	n := limit
	if n <= 0 || n > coll.Count() {
		n = coll.Count()
	}
	if n == 0 {
		return nil, nil
	}

	docs, err := coll.QueryEmbedding(context.Background(), queryEmbedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: query: %w", err)
	}

	matches := make([]Match, 0, len(docs))
	for _, doc := range docs {
		if float64(doc.Similarity) < threshold {
			continue
		}
		meta := make(map[string]any, len(doc.Metadata))
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		matches = append(matches, Match{
			Record: Record{
				ID:        doc.ID,
				Content:   doc.Content,
				Embedding: doc.Embedding,
				Metadata:  meta,
			},
			Similarity: float64(doc.Similarity),
		})
	}
	return matches, nil
}
