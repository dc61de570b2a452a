package treesitter

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// treeSitterLangParser parses a single language via go-tree-sitter,
// grounded on internal/indexer/parsers/treesitter.go's newTreeSitterParser
// helper shared by every per-language parser in the teacher.
type treeSitterLangParser struct {
	lang     string
	language *sitter.Language
}

func newTreeSitterParser(lang string) LanguageParser {
	return &treeSitterLangParser{lang: lang, language: grammarFor(lang)}
}

func (p *treeSitterLangParser) Language() string { return p.lang }

func (p *treeSitterLangParser) Parse(source []byte) (*Node, error) {
	if p.language == nil {
		return nil, fmt.Errorf("no tree-sitter grammar registered for %q", p.lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree for %q", p.lang)
	}
	defer tree.Close()

	return convertSitterNode(tree.RootNode(), source, nil), nil
}

func convertSitterNode(n *sitter.Node, source []byte, parent *Node) *Node {
	if n == nil {
		return nil
	}

	node := &Node{
		Type:          n.Kind(),
		StartPosition: Position{Row: int(n.StartPosition().Row), Column: int(n.StartPosition().Column)},
		EndPosition:   Position{Row: int(n.EndPosition().Row), Column: int(n.EndPosition().Column)},
		Text:          string(source[n.StartByte():n.EndByte()]),
		Parent:        parent,
	}

	count := int(n.ChildCount())
	node.Children = make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.Child(uint(i))
		converted := convertSitterNode(child, source, node)
		if converted == nil {
			continue
		}
		node.Children = append(node.Children, converted)
		if child.IsNamed() {
			node.NamedChildren = append(node.NamedChildren, converted)
		}
	}

	return node
}
