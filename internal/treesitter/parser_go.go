package treesitter

import (
	"go/ast"
	"go/parser"
	"go/token"
)

// goLangParser parses Go source with go/ast, grounded on the teacher's
// multiLanguageParser.parseGoFile, converting the go/ast tree into the
// facade's generic Node shape instead of the bespoke CodeExtraction tiers.
type goLangParser struct{}

func newGoParser() LanguageParser { return &goLangParser{} }

func (p *goLangParser) Language() string { return "go" }

func (p *goLangParser) Parse(source []byte) (*Node, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", source, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	root := &Node{Type: "source_file"}
	ast.Inspect(file, func(n ast.Node) bool {
		if n == nil {
			return true
		}
		switch decl := n.(type) {
		case *ast.FuncDecl:
			root.Children = append(root.Children, goNodeFromPositions(
				"function_declaration", decl.Pos(), decl.End(), fset, source))
			return false
		case *ast.GenDecl:
			if decl.Tok == token.TYPE {
				root.Children = append(root.Children, goNodeFromPositions(
					"type_declaration", decl.Pos(), decl.End(), fset, source))
				return false
			}
		}
		return true
	})

	for _, child := range root.Children {
		child.Parent = root
	}
	root.NamedChildren = root.Children
	if len(root.Children) > 0 {
		root.EndPosition = root.Children[len(root.Children)-1].EndPosition
	}

	return root, nil
}

func goNodeFromPositions(typ string, start, end token.Pos, fset *token.FileSet, source []byte) *Node {
	startPos := fset.Position(start)
	endPos := fset.Position(end)
	return &Node{
		Type:          typ,
		StartPosition: Position{Row: startPos.Line - 1, Column: startPos.Column - 1},
		EndPosition:   Position{Row: endPos.Line - 1, Column: endPos.Column - 1},
		Text:          string(source[startPos.Offset:endPos.Offset]),
	}
}
