package treesitter

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// grammarFor resolves the go-tree-sitter language binding for a language id.
// JavaScript and TypeScript share the typescript grammar's TSX/JS variants,
// mirroring how the teacher's typescript.go parser also covers .jsx/.tsx.
func grammarFor(lang string) *sitter.Language {
	switch lang {
	case "python":
		return sitter.NewLanguage(python.Language())
	case "typescript":
		return sitter.NewLanguage(typescript.LanguageTypescript())
	case "javascript":
		return sitter.NewLanguage(typescript.LanguageTSX())
	case "rust":
		return sitter.NewLanguage(rust.Language())
	case "c", "cpp":
		return sitter.NewLanguage(c.Language())
	case "java":
		return sitter.NewLanguage(java.Language())
	case "php":
		return sitter.NewLanguage(php.LanguagePHP())
	case "ruby":
		return sitter.NewLanguage(ruby.Language())
	default:
		return nil
	}
}

// chunkableKinds maps a language id to the set of tree-sitter node types
// that spec.md §4.1 calls "chunkable kinds": function/class/method/property
// declarations, and type/interface/enum where the language has them. Built
// from the node-type switch statements in the teacher's per-language
// parsers (internal/indexer/parsers/{python,typescript,java,c,rust,php,ruby}.go).
var chunkableKinds = map[string]map[string]string{
	"python": {
		"class_definition":    "class",
		"function_definition": "function",
	},
	"typescript": {
		"class_declaration":      "class",
		"interface_declaration":  "interface",
		"type_alias_declaration": "type",
		"function_declaration":   "function",
		"method_definition":      "method",
	},
	"javascript": {
		"class_declaration":    "class",
		"function_declaration": "function",
		"method_definition":    "method",
	},
	"java": {
		"class_declaration":     "class",
		"interface_declaration": "interface",
		"enum_declaration":      "enum",
		"method_declaration":    "method",
	},
	"c": {
		"struct_specifier":    "struct",
		"union_specifier":     "union",
		"enum_specifier":      "enum",
		"function_definition": "function",
	},
	"cpp": {
		"struct_specifier":    "struct",
		"union_specifier":     "union",
		"enum_specifier":      "enum",
		"function_definition": "function",
	},
	"rust": {
		"struct_item":   "struct",
		"enum_item":     "enum",
		"trait_item":    "trait",
		"impl_item":     "impl",
		"function_item": "function",
	},
	"php": {
		"class_declaration":     "class",
		"interface_declaration": "interface",
		"trait_declaration":     "trait",
		"function_definition":   "function",
		"method_declaration":    "method",
	},
	"ruby": {
		"class":  "class",
		"module": "module",
		"method": "method",
	},
	"go": {
		"type_declaration":     "type",
		"function_declaration": "function",
		"method_declaration":   "method",
	},
}

// ChunkableKinds exposes the per-language table to the AST chunker.
func ChunkableKinds(language string) map[string]string {
	return chunkableKinds[language]
}
