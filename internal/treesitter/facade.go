// Package treesitter is the optional syntax-tree facade spec.md §6 and §4.1
// describe: a parser+symbol-extractor capability consumed by the AST
// chunker and the structural ranker factor. Grounded on the teacher's
// internal/indexer/parser.go (multiLanguageParser dispatching go/ast vs.
// tree-sitter by extension) and internal/indexer/parsers/* (one
// tree-sitter grammar binding per language).
package treesitter

import (
	"context"
	"log"
	"sync"

	"github.com/mvp-joe/cortexctx/internal/cancel"
)

// Position is a zero-indexed row/column, matching tree-sitter's convention.
type Position struct {
	Row    int
	Column int
}

// Node is a facade-level syntax tree node, deliberately narrower than any
// single underlying parser's node type (spec.md §6 ParseResult contract).
type Node struct {
	Type          string
	StartPosition Position
	EndPosition   Position
	Text          string
	Children      []*Node
	NamedChildren []*Node
	Parent        *Node
}

// ParseResult is the output of Parse. Fallback is true when the language
// could not be parsed and Root is a single synthetic node spanning the
// whole input (spec.md §4.1's AST-chunker fallback, surfaced here so
// callers other than the chunker can detect it too).
type ParseResult struct {
	Root     *Node
	Language string
	Fallback bool
}

// TextModel is the minimal read-only view over a buffer the facade needs,
// matching spec.md §6's text-model contract exactly so the gatherer and the
// facade can share callers.
type TextModel interface {
	GetText() string
	GetLineContent(line int) string // 1-indexed
	GetLineCount() int
	GetLanguageId() string
}

// Facade is the syntax-tree capability spec.md §6 names: parse, walk,
// locate, and resolve ancestry, plus ClearCache to drop any per-parser
// caches (tree-sitter parsers are cheap to recreate but languages may pool
// grammars).
type Facade interface {
	Parse(ctx context.Context, model TextModel, token *cancel.Token) (*ParseResult, error)
	WalkTree(root *Node, visitor func(*Node) bool)
	FindNodeAtPosition(root *Node, pos Position) *Node
	GetNodePath(node *Node) []*Node
	ClearCache()
}

// LanguageParser is the per-language capability a facade dispatches to.
// Implementations live in this package (goLangParser in parser_go.go, and
// treeSitterLangParser in parser_sitter.go, one instance per grammar that
// languages.go resolves).
type LanguageParser interface {
	Parse(source []byte) (*Node, error)
	Language() string
}

// multiLanguageFacade routes to a LanguageParser by TextModel.GetLanguageId(),
// mirroring multiLanguageParser.ParseFile's switch in the teacher.
type multiLanguageFacade struct {
	mu      sync.Mutex
	parsers map[string]LanguageParser
}

// NewFacade builds a Facade wired with every supported language. Missing
// grammars (a language with no LanguageParser registered) fall back to the
// synthetic whole-content node, never an error.
func NewFacade() Facade {
	f := &multiLanguageFacade{parsers: make(map[string]LanguageParser)}
	for _, p := range []LanguageParser{
		newGoParser(),
		newTreeSitterParser("python"),
		newTreeSitterParser("typescript"),
		newTreeSitterParser("javascript"),
		newTreeSitterParser("rust"),
		newTreeSitterParser("c"),
		newTreeSitterParser("cpp"),
		newTreeSitterParser("java"),
		newTreeSitterParser("php"),
		newTreeSitterParser("ruby"),
	} {
		f.parsers[p.Language()] = p
	}
	return f
}

func (f *multiLanguageFacade) Parse(ctx context.Context, model TextModel, token *cancel.Token) (*ParseResult, error) {
	if token.IsCancellationRequested() {
		return &ParseResult{Language: model.GetLanguageId()}, nil
	}

	lang := model.GetLanguageId()
	source := []byte(model.GetText())

	f.mu.Lock()
	p, ok := f.parsers[lang]
	f.mu.Unlock()

	if !ok {
		return fallbackResult(lang, source), nil
	}

	root, err := p.Parse(source)
	if err != nil || root == nil {
		// ParseFailure is recovered locally (spec.md §7): log and fall back.
		log.Printf("treesitter: parse failure for language %q: %v", lang, err)
		return fallbackResult(lang, source), nil
	}

	return &ParseResult{Root: root, Language: lang}, nil
}

func fallbackResult(lang string, source []byte) *ParseResult {
	return &ParseResult{
		Language: lang,
		Fallback: true,
		Root: &Node{
			Type: "fallback_root",
			Text: string(source),
			EndPosition: Position{
				Row: countNewlines(source),
			},
		},
	}
}

func countNewlines(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}

func (f *multiLanguageFacade) WalkTree(root *Node, visitor func(*Node) bool) {
	if root == nil {
		return
	}
	if !visitor(root) {
		return
	}
	for _, child := range root.Children {
		f.WalkTree(child, visitor)
	}
}

func (f *multiLanguageFacade) FindNodeAtPosition(root *Node, pos Position) *Node {
	if root == nil {
		return nil
	}
	if !containsPosition(root, pos) {
		return nil
	}
	best := root
	for _, child := range root.Children {
		if found := f.FindNodeAtPosition(child, pos); found != nil {
			best = found
		}
	}
	return best
}

func containsPosition(n *Node, pos Position) bool {
	if pos.Row < n.StartPosition.Row || pos.Row > n.EndPosition.Row {
		return false
	}
	if pos.Row == n.StartPosition.Row && pos.Column < n.StartPosition.Column {
		return false
	}
	if pos.Row == n.EndPosition.Row && pos.Column > n.EndPosition.Column {
		return false
	}
	return true
}

func (f *multiLanguageFacade) GetNodePath(node *Node) []*Node {
	var path []*Node
	for n := node; n != nil; n = n.Parent {
		path = append([]*Node{n}, path...)
	}
	return path
}

func (f *multiLanguageFacade) ClearCache() {
	// Tree-sitter parsers here are stateless per call (each Parse call opens
	// and closes its own sitter.Parser), so there is nothing to evict; this
	// exists to satisfy the facade contract for implementations that do pool
	// parsers.
}
