package lookup

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/gosense/gosense/internal/parser"
)

// nodeStyles is the closed set of node kinds that carry a style.
var nodeStyles = map[string]Style{
	"interface_type":        StyleInterface,
	"struct_type":           StyleAggregate,
	"array_type":            StyleAggregate,
	"slice_type":            StyleAggregate,
	"map_type":              StyleAggregate,
	"channel_type":          StyleAggregate,
	"pointer_type":          StyleAggregate,
	"qualified_type":        StyleAggregate,
	"generic_type":          StyleAggregate,
	"function_declaration":  StyleFunction,
	"method_declaration":    StyleMethod,
	"var_declaration":       StyleVariable,
	"var_spec":              StyleVariable,
	"short_var_declaration": StyleVariable,
	"range_clause":          StyleVariable,
	"const_declaration":     StyleConstant,
	"const_spec":            StyleConstant,
	"field_declaration":     StyleField,
}

// Classify sets e's style from node's kind. Identifiers stand for their
// parent declaration and type specs for their underlying type; callables
// also get a CallInsertHandler. Unknown kinds leave e unchanged.
func Classify(node *sitter.Node, e *Entry) {
	for node != nil {
		switch node.Type() {
		case "identifier", "field_identifier", "package_identifier":
			node = node.Parent()
			if node != nil && node.Type() == "expression_list" {
				node = declaringStatement(node)
			}
			continue
		case "type_identifier":
			if isNameOf(node) {
				node = node.Parent()
				continue
			}
			e.Style = StyleAggregate
			return
		case "type_spec", "type_alias":
			node = node.ChildByFieldName("type")
			continue
		}

		style, ok := nodeStyles[node.Type()]
		if !ok {
			return
		}
		e.Style = style
		if style == StyleFunction || style == StyleMethod {
			e.Insert = CallInsertHandler{HasParams: hasParams(node)}
		}
		return
	}
}

// isNameOf reports whether node is the declared name of its parent.
func isNameOf(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	return parser.SameNode(parent.ChildByFieldName("name"), node)
}

// declaringStatement returns the short variable declaration or range clause
// whose left-hand side is list, or nil when list is not one.
func declaringStatement(list *sitter.Node) *sitter.Node {
	parent := list.Parent()
	if parent == nil {
		return nil
	}
	switch parent.Type() {
	case "short_var_declaration", "range_clause":
		if parser.SameNode(parent.ChildByFieldName("left"), list) {
			return parent
		}
	}
	return nil
}

func hasParams(node *sitter.Node) bool {
	params := node.ChildByFieldName("parameters")
	return params != nil && params.NamedChildCount() > 0
}
