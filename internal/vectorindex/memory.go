package vectorindex

import (
	"fmt"
	"sort"
)

// InMemoryIndex is the reference Index adapter spec.md §4.4 specifies:
// id -> {content, embedding, metadata}, linear-scan cosine similarity.
type InMemoryIndex struct {
	records map[string]Record
	dims    int
}

// NewInMemoryIndex creates an empty in-memory vector index.
func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{records: make(map[string]Record)}
}

func (idx *InMemoryIndex) Upsert(records []Record) error {
	for _, r := range records {
		if idx.dims == 0 {
			idx.dims = len(r.Embedding)
		} else if len(r.Embedding) != idx.dims {
			return fmt.Errorf("%w: record %q has %d dims, index has %d", ErrDimensionMismatch, r.ID, len(r.Embedding), idx.dims)
		}
		idx.records[r.ID] = r
	}
	return nil
}

func (idx *InMemoryIndex) Delete(ids []string) error {
	for _, id := range ids {
		delete(idx.records, id)
	}
	return nil
}

func (idx *InMemoryIndex) Count() int {
	return len(idx.records)
}

// FindSimilar computes cosine similarity against every record, filters by
// threshold, sorts descending, and slices to limit. threshold <= 0 uses
// defaultThreshold (0.7) per spec.md §4.4.
func (idx *InMemoryIndex) FindSimilar(queryEmbedding []float32, limit int, threshold float64) ([]Match, error) {
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	if idx.dims != 0 && len(queryEmbedding) != idx.dims {
		return nil, fmt.Errorf("%w: query has %d dims, index has %d", ErrDimensionMismatch, len(queryEmbedding), idx.dims)
	}

	var matches []Match
	for _, r := range idx.records {
		sim := cosineSimilarity(queryEmbedding, r.Embedding)
		if sim >= threshold {
			matches = append(matches, Match{Record: r, Similarity: sim})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
