package treesitter

import (
	"regexp"
	"strconv"
)

// SymbolKind is the closed enumeration spec.md §3 names for SymbolInfo.
type SymbolKind string

const (
	SymbolFunction  SymbolKind = "Function"
	SymbolClass     SymbolKind = "Class"
	SymbolMethod    SymbolKind = "Method"
	SymbolInterface SymbolKind = "Interface"
	SymbolType      SymbolKind = "Type"
	SymbolVariable  SymbolKind = "Variable"
	SymbolOther     SymbolKind = "Other"
)

// Range is a half-open span over Positions.
type Range struct {
	Start Position
	End   Position
}

// Location pairs a file path with a Range, per spec.md §3's SymbolInfo.location.
type Location struct {
	Path  string
	Range Range
}

// SymbolInfo mirrors spec.md §3 exactly: id combines kind+name+start
// position so it stays stable across identical files, independent of any
// particular parser's internal ids.
type SymbolInfo struct {
	ID            string
	Name          string
	Kind          SymbolKind
	Location      Location
	ContainerName string
	Children      []SymbolInfo
}

var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

var genericKeywords = map[string]bool{
	"class": true, "interface": true, "struct": true, "union": true,
	"enum": true, "trait": true, "impl": true, "module": true, "type": true,
	"function": true, "func": true, "def": true, "fn": true, "method": true,
	"public": true, "private": true, "protected": true, "static": true,
	"final": true, "abstract": true, "async": true, "export": true,
	"default": true, "const": true, "var": true, "let": true,
}

// symbolKindFor maps a generic treesitter kind label (from ChunkableKinds'
// values) to the closed SymbolKind enum. Unknown kinds map to SymbolOther
// rather than erroring, per spec.md §9's "dynamic dispatch via string
// kinds" design note.
func symbolKindFor(genericKind string) SymbolKind {
	switch genericKind {
	case "function":
		return SymbolFunction
	case "method":
		return SymbolMethod
	case "class", "struct", "module":
		return SymbolClass
	case "interface", "trait":
		return SymbolInterface
	case "type", "enum", "union", "impl":
		return SymbolType
	default:
		return SymbolOther
	}
}

// ExtractSymbols walks root and emits one SymbolInfo per chunkable node for
// language, nesting children under their lexical parent the way the tree
// itself nests them.
func ExtractSymbols(root *Node, language, path string) []SymbolInfo {
	kinds := ChunkableKinds(language)
	if root == nil || len(kinds) == 0 {
		return nil
	}
	return extractSymbolsRec(root, kinds, path, "")
}

func extractSymbolsRec(n *Node, kinds map[string]string, path, container string) []SymbolInfo {
	var out []SymbolInfo
	for _, child := range n.Children {
		genericKind, ok := kinds[child.Type]
		if !ok {
			out = append(out, extractSymbolsRec(child, kinds, path, container)...)
			continue
		}

		kind := symbolKindFor(genericKind)
		name := symbolName(child.Text)
		info := SymbolInfo{
			Name: name,
			Kind: kind,
			Location: Location{
				Path: path,
				Range: Range{Start: child.StartPosition, End: child.EndPosition},
			},
			ContainerName: container,
		}
		info.ID = symbolID(kind, name, child.StartPosition)
		info.Children = extractSymbolsRec(child, kinds, path, name)
		out = append(out, info)
	}
	return out
}

// symbolName extracts the first non-keyword identifier from a declaration's
// source text, a generalization of the per-language name-extraction logic
// in the teacher's parsers (e.g. processTypeSpec's spec.Name.Name).
func symbolName(text string) string {
	for _, tok := range identifierPattern.FindAllString(text, -1) {
		if !genericKeywords[tok] {
			return tok
		}
	}
	return ""
}

func symbolID(kind SymbolKind, name string, pos Position) string {
	return string(kind) + ":" + name + ":" + strconv.Itoa(pos.Row) + ":" + strconv.Itoa(pos.Column)
}
