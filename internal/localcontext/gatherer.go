// Package localcontext implements the cursor-relative snippet gatherer
// spec.md §4.5 describes. It consumes the line-oriented part of the
// treesitter facade's TextModel contract
// (github.com/mvp-joe/cortexctx/internal/treesitter),
// grounded on the teacher's shared-model idiom of passing a narrow
// line-oriented interface between independent components instead of a
// concrete buffer type.
package localcontext

import (
	"sort"
	"strings"

	"github.com/mvp-joe/cortexctx/internal/cancel"
)

// TextModel is the minimal read-only buffer view the gatherer needs.
// It has the same line-oriented methods as treesitter.TextModel, without
// GetText; kept as its own type so this package has no dependency on
// treesitter.
type TextModel interface {
	GetLineContent(line int) string // 1-indexed
	GetLineCount() int
	GetLanguageId() string
}

// Position is a 1-indexed cursor location.
type Position struct {
	Line   int
	Column int
}

// SnippetKind is the closed set of local-context snippet types spec.md §4.5
// and §3 name.
type SnippetKind string

const (
	KindExact   SnippetKind = "Exact"
	KindNearby  SnippetKind = "Nearby"
	KindParent  SnippetKind = "Parent"
	KindSibling SnippetKind = "Sibling"
	KindRelated SnippetKind = "Related"
)

// Snippet is one gathered piece of local context.
type Snippet struct {
	Kind      SnippetKind
	Content   string
	StartLine int
	EndLine   int
	Relevance float64
}

type cacheKey struct {
	languageID string
	line       int
	column     int
}

// Gatherer produces Exact/Nearby/Parent snippets around a cursor position,
// caching results by (languageId, line, column).
type Gatherer struct {
	linesAbove int
	linesBelow int
	cache      map[cacheKey][]Snippet
}

// NewGatherer creates a Gatherer with the given above/below window sizes.
func NewGatherer(linesAbove, linesBelow int) *Gatherer {
	if linesAbove <= 0 {
		linesAbove = 5
	}
	if linesBelow <= 0 {
		linesBelow = 5
	}
	return &Gatherer{linesAbove: linesAbove, linesBelow: linesBelow, cache: make(map[cacheKey][]Snippet)}
}

// ClearCache drops all cached gather results.
func (g *Gatherer) ClearCache() {
	g.cache = make(map[cacheKey][]Snippet)
}

// Gather returns the Exact, Nearby, and Parent snippets around pos,
// checking cancellation before each sub-gather and returning whatever has
// been collected so far if cancelled (spec.md §5).
func (g *Gatherer) Gather(model TextModel, pos Position, token *cancel.Token) []Snippet {
	key := cacheKey{languageID: model.GetLanguageId(), line: pos.Line, column: pos.Column}
	if cached, ok := g.cache[key]; ok {
		return cached
	}

	var out []Snippet

	if token.IsCancellationRequested() {
		return out
	}
	if s, ok := g.gatherExact(model, pos); ok {
		out = append(out, s)
	}

	if token.IsCancellationRequested() {
		g.cache[key] = out
		return out
	}
	out = append(out, g.gatherNearby(model, pos)...)

	if token.IsCancellationRequested() {
		g.cache[key] = out
		return out
	}
	if s, ok := g.gatherParent(model, pos); ok {
		out = append(out, s)
	}

	g.cache[key] = out
	return out
}

func (g *Gatherer) gatherExact(model TextModel, pos Position) (Snippet, bool) {
	if pos.Line < 1 || pos.Line > model.GetLineCount() {
		return Snippet{}, false
	}
	return Snippet{
		Kind:      KindExact,
		Content:   model.GetLineContent(pos.Line),
		StartLine: pos.Line,
		EndLine:   pos.Line,
		Relevance: 1.0,
	}, true
}

func (g *Gatherer) gatherNearby(model TextModel, pos Position) []Snippet {
	var out []Snippet

	aboveStart := pos.Line - g.linesAbove
	aboveEnd := pos.Line - 1
	if content, ok := joinLines(model, aboveStart, aboveEnd); ok {
		out = append(out, Snippet{Kind: KindNearby, Content: content, StartLine: max(aboveStart, 1), EndLine: aboveEnd, Relevance: 0.8})
	}

	belowStart := pos.Line + 1
	belowEnd := pos.Line + g.linesBelow
	if content, ok := joinLines(model, belowStart, belowEnd); ok {
		out = append(out, Snippet{Kind: KindNearby, Content: content, StartLine: belowStart, EndLine: min(belowEnd, model.GetLineCount()), Relevance: 0.7})
	}

	return out
}

// gatherParent scans upward from position.line-1 for the first non-blank
// line with strictly smaller indentation than the current line, then
// returns the contiguous block from there through position.line.
func (g *Gatherer) gatherParent(model TextModel, pos Position) (Snippet, bool) {
	if pos.Line < 1 || pos.Line > model.GetLineCount() {
		return Snippet{}, false
	}
	currentIndent := indentOf(model.GetLineContent(pos.Line))

	for line := pos.Line - 1; line >= 1; line-- {
		text := model.GetLineContent(line)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if indentOf(text) < currentIndent {
			content, ok := joinLines(model, line, pos.Line)
			if !ok {
				return Snippet{}, false
			}
			return Snippet{Kind: KindParent, Content: content, StartLine: line, EndLine: pos.Line, Relevance: 0.9}, true
		}
	}
	return Snippet{}, false
}

func joinLines(model TextModel, start, end int) (string, bool) {
	if start > end {
		return "", false
	}
	lineCount := model.GetLineCount()
	if end < 1 || start > lineCount {
		return "", false
	}
	if start < 1 {
		start = 1
	}
	if end > lineCount {
		end = lineCount
	}

	var b strings.Builder
	for line := start; line <= end; line++ {
		if line > start {
			b.WriteByte('\n')
		}
		b.WriteString(model.GetLineContent(line))
	}
	return strings.TrimRight(b.String(), " \t\n"), true
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		if r == ' ' {
			n++
		} else if r == '\t' {
			n += 4
		} else {
			break
		}
	}
	return n
}

// DefaultMaxSnippets and DefaultMinRelevance are getAllContextSnippets'
// defaults (spec.md §4.5).
const (
	DefaultMaxSnippets  = 20
	DefaultMinRelevance = 0.2
)

// AllContextSnippets sorts snippets by descending relevance, drops those
// below minRelevance, and truncates to maxSnippets. maxSnippets <= 0 uses
// DefaultMaxSnippets; minRelevance < 0 uses DefaultMinRelevance.
func AllContextSnippets(snippets []Snippet, maxSnippets int, minRelevance float64) []Snippet {
	if maxSnippets <= 0 {
		maxSnippets = DefaultMaxSnippets
	}
	if minRelevance < 0 {
		minRelevance = DefaultMinRelevance
	}

	filtered := make([]Snippet, 0, len(snippets))
	for _, s := range snippets {
		if s.Relevance >= minRelevance {
			filtered = append(filtered, s)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Relevance > filtered[j].Relevance })

	if len(filtered) > maxSnippets {
		filtered = filtered[:maxSnippets]
	}
	return filtered
}
