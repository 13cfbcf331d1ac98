// Package template decides which code-template contexts apply at a
// position in a Go file.
package template

import (
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/gosense/gosense/internal/parser"
)

// Everywhere is the ID of the root context every other context is based on.
const Everywhere = "EVERYWHERE"

// ContextType is a named region where templates may expand.
type ContextType struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	BaseID string `json:"base" yaml:"base"`

	applies func(*sitter.Node) bool
}

var (
	// Generic applies anywhere in Go code.
	Generic = &ContextType{
		ID:      "GO",
		Name:    "Go",
		BaseID:  Everywhere,
		applies: func(*sitter.Node) bool { return true },
	}

	// Function applies inside a function or method declaration.
	Function = &ContextType{
		ID:      "GO_FUNCTION",
		Name:    "Go function",
		BaseID:  "GO",
		applies: inFunction,
	}
)

// All returns every context type, base contexts first.
func All() []*ContextType {
	return []*ContextType{Generic, Function}
}

// InContext reports whether offset in file is Go code, not whitespace, and
// satisfies the context's predicate.
func (c *ContextType) InContext(file *parser.ParseResult, offset int) bool {
	if file == nil || file.Language != parser.Go {
		return false
	}
	if offset < 0 || offset >= len(file.Source) {
		return false
	}
	if r, _ := utf8.DecodeRune(file.Source[offset:]); unicode.IsSpace(r) {
		return false
	}

	node := file.NodeAt(offset)
	if node == nil {
		return false
	}
	return c.applies(node)
}

// Applicable returns the context types that hold at offset.
func Applicable(file *parser.ParseResult, offset int) []*ContextType {
	var out []*ContextType
	for _, c := range All() {
		if c.InContext(file, offset) {
			out = append(out, c)
		}
	}
	return out
}

// ApplicableIDs is Applicable reduced to context IDs.
func ApplicableIDs(file *parser.ParseResult, offset int) []string {
	var ids []string
	for _, c := range Applicable(file, offset) {
		ids = append(ids, c.ID)
	}
	return ids
}

func inFunction(node *sitter.Node) bool {
	return parser.Ancestor(node, "function_declaration", "method_declaration") != nil
}
