// Package sparse implements the TF-IDF inverted index over chunk text.
// Grounded on the teacher's internal/storage/fts_index.go (SQLite FTS5
// inverted-index idiom: per-term postings, separators tuned for code
// identifiers) generalized to an in-process, dependency-free index per
// spec.md §4.2, since indexing here operates over arbitrary embedding
// providers rather than a single SQLite connection.
package sparse

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/mvp-joe/cortexctx/internal/cancel"
)

// Document is one sparse-side document: a key plus its ordered chunk texts.
// The index scores chunks, not whole documents; deleteDocument/updateDocuments
// operate at document granularity so re-indexing a file is a single call.
type Document struct {
	Key        string
	TextChunks []string
}

// ChunkRef identifies a single indexed chunk by its owning document key and
// position within that document's TextChunks slice.
type ChunkRef struct {
	DocKey     string
	ChunkIndex int
}

// TfIdfScore is one scored chunk, unsorted as it leaves Score.
type TfIdfScore struct {
	Chunk ChunkRef
	Score float64
}

var tokenPattern = regexp.MustCompile(`\b\p{L}[\p{L}\d]{2,}\b`)

// tokenize splits text per spec.md §4.2: the base regex match, lowercased,
// plus each camelCase part of length >= 3 letters.
func tokenize(text string) []string {
	matches := tokenPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ToLower(m))
		out = append(out, camelParts(m)...)
	}
	return out
}

func camelParts(word string) []string {
	runes := []rune(word)
	var parts []string
	start := 0
	for i := 1; i < len(runes); i++ {
		if unicode.IsLower(runes[i-1]) && unicode.IsUpper(runes[i]) {
			if i-start >= 3 {
				parts = append(parts, strings.ToLower(string(runes[start:i])))
			}
			start = i
		}
	}
	if len(runes)-start >= 3 && start > 0 {
		parts = append(parts, strings.ToLower(string(runes[start:])))
	}
	return parts
}

type chunkEntry struct {
	ref   ChunkRef
	terms map[string]int // term -> term frequency within this chunk
}

// Index is the mutable TF-IDF structure. Not safe for concurrent use; the
// engine's cooperative single-threaded scheduling model (spec.md §5) is the
// only concurrency guard it relies on.
type Index struct {
	chunks      []chunkEntry
	byDoc       map[string][]int // docKey -> indices into chunks
	occurrences map[string]int   // term -> number of chunks containing it
}

// NewIndex creates an empty sparse index.
func NewIndex() *Index {
	return &Index{
		byDoc:       make(map[string][]int),
		occurrences: make(map[string]int),
	}
}

// UpdateDocuments replaces any existing entries sharing a key with docs, then
// inserts. Cancellation is checked once per document; on cancel the
// documents processed so far remain indexed (spec.md §5's "partial writes
// remain" rule) and the call returns early.
func (idx *Index) UpdateDocuments(docs []Document, token *cancel.Token) {
	for _, doc := range docs {
		if token.IsCancellationRequested() {
			return
		}
		idx.DeleteDocument(doc.Key)
		idx.insertDocument(doc)
	}
}

func (idx *Index) insertDocument(doc Document) {
	var indices []int
	for i, text := range doc.TextChunks {
		tf := make(map[string]int)
		for _, tok := range tokenize(text) {
			tf[tok]++
		}
		for term := range tf {
			idx.occurrences[term]++
		}
		idx.chunks = append(idx.chunks, chunkEntry{
			ref:   ChunkRef{DocKey: doc.Key, ChunkIndex: i},
			terms: tf,
		})
		indices = append(indices, len(idx.chunks)-1)
	}
	if len(indices) > 0 {
		idx.byDoc[doc.Key] = indices
	}
}

// DeleteDocument reverses a prior insertion exactly: every term's occurrence
// counter is decremented once per chunk of this document that contained it,
// and any counter reaching zero is removed from the map entirely.
func (idx *Index) DeleteDocument(key string) {
	indices, ok := idx.byDoc[key]
	if !ok {
		return
	}

	removeSet := make(map[int]bool, len(indices))
	for _, i := range indices {
		removeSet[i] = true
		for term := range idx.chunks[i].terms {
			idx.occurrences[term]--
			if idx.occurrences[term] <= 0 {
				delete(idx.occurrences, term)
			}
		}
	}

	kept := idx.chunks[:0]
	remap := make(map[int]int, len(idx.chunks))
	for i, c := range idx.chunks {
		if removeSet[i] {
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, c)
	}
	idx.chunks = kept

	delete(idx.byDoc, key)
	for docKey, docIndices := range idx.byDoc {
		newIndices := make([]int, 0, len(docIndices))
		for _, i := range docIndices {
			if ni, ok := remap[i]; ok {
				newIndices = append(newIndices, ni)
			}
		}
		idx.byDoc[docKey] = newIndices
	}
}

func (idx *Index) chunkCount() int {
	return len(idx.chunks)
}

func (idx *Index) idf(term string) float64 {
	occ := idx.occurrences[term]
	if occ <= 0 {
		return 0
	}
	return math.Log(float64(idx.chunkCount()+1) / float64(occ))
}

// Score computes TfIdfScore for every chunk with a positive score against
// query, memoizing IDF per term for the duration of the call. Cancellation
// is checked before each document's chunks; on cancel returns what has been
// scored so far is discarded per spec.md §5 ("returns []").
func (idx *Index) Score(query string, token *cancel.Token) []TfIdfScore {
	queryTerms := make(map[string]int)
	for _, tok := range tokenize(query) {
		queryTerms[tok]++
	}

	idfMemo := make(map[string]float64, len(queryTerms))
	queryWeights := make(map[string]float64, len(queryTerms))
	for term, tf := range queryTerms {
		idfVal, ok := idfMemo[term]
		if !ok {
			idfVal = idx.idf(term)
			idfMemo[term] = idfVal
		}
		if idfVal == 0 {
			continue
		}
		queryWeights[term] = float64(tf) * idfVal
	}
	if len(queryWeights) == 0 {
		return []TfIdfScore{}
	}

	var out []TfIdfScore
	seenDoc := ""
	for _, entry := range idx.chunks {
		if entry.ref.DocKey != seenDoc {
			seenDoc = entry.ref.DocKey
			if token.IsCancellationRequested() {
				return []TfIdfScore{}
			}
		}

		var score float64
		for term, qWeight := range queryWeights {
			tfc, ok := entry.terms[term]
			if !ok {
				continue
			}
			score += float64(tfc) * idfMemo[term] * qWeight
		}
		if score > 0 {
			out = append(out, TfIdfScore{Chunk: entry.ref, Score: score})
		}
	}
	return out
}

// Normalize sorts scores descending and scales by the max so the top score
// is exactly 1. An empty input returns an empty slice.
func Normalize(scores []TfIdfScore) []TfIdfScore {
	if len(scores) == 0 {
		return scores
	}
	out := make([]TfIdfScore, len(scores))
	copy(out, scores)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	max := out[0].Score
	if max == 0 {
		return out
	}
	for i := range out {
		out[i].Score = out[i].Score / max
	}
	return out
}
