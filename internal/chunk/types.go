// Package chunk transforms raw file or buffer text into retrieval-unit
// Chunks under three interchangeable strategies: fixed-size, semantic, and
// syntax-tree driven. Grounded on the teacher's internal/indexer/chunker.go
// markdown chunker, generalized from "split by ## headers" to the three
// strategies spec.md §4.1 requires.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mvp-joe/cortexctx/internal/cancel"
)

// Strategy selects which chunking algorithm produces the Chunk slice.
type Strategy string

const (
	FixedSize Strategy = "fixed_size"
	Semantic  Strategy = "semantic"
	AST       Strategy = "ast"
)

// Metadata carries the fields spec.md §3 names explicitly, plus an open
// Extra map for strategy-specific additions (symbolKind, signature, fallback).
type Metadata struct {
	StartLine int // 0-indexed, inclusive
	EndLine   int // 0-indexed, inclusive
	ParentID  string
	Type      string
	Language  string
	FileName  string
	FilePath  string
	Extra     map[string]any
}

// Chunk is a single retrieval unit.
type Chunk struct {
	ID       string
	Content  string
	Metadata Metadata
}

// Chunker produces Chunks from content under a single strategy.
type Chunker interface {
	Chunk(content string, meta Metadata, token *cancel.Token) ([]Chunk, error)
}

// NewID derives a deterministic hex chunk id from the chunk's content, its
// stable position (index) within the parent document, and an optional
// type/filename prefix. Same content + index + metadata always yields the
// same id (spec.md §3, §8 idempotence property); the hash never observes
// wall-clock time or randomness.
func NewID(content string, index int, typ, fileName string) string {
	h := sha256.New()
	if typ != "" {
		h.Write([]byte(typ))
		h.Write([]byte{0})
	}
	if fileName != "" {
		h.Write([]byte(fileName))
		h.Write([]byte{0})
	}
	fmt.Fprintf(h, "%d\x00", index)
	h.Write([]byte(content))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)[:24]
}
