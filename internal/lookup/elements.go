package lookup

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/gosense/gosense/internal/parser"
)

// FromNode builds the entry for element, labelled with child's text.
// Callables show their parameters as tail text and their results as
// type text; specs and fields show their declared type.
func FromNode(src []byte, element, child *sitter.Node) Entry {
	e := Entry{}
	if child != nil {
		e.Text = child.Content(src)
	}
	if element == nil {
		return e
	}

	switch element.Type() {
	case "function_declaration", "method_declaration":
		if params := element.ChildByFieldName("parameters"); params != nil {
			e.TailText = params.Content(src)
		}
		if result := element.ChildByFieldName("result"); result != nil {
			e.TypeText = result.Content(src)
		}
	case "var_spec", "const_spec", "field_declaration":
		if typ := element.ChildByFieldName("type"); typ != nil {
			e.TypeText = typ.Content(src)
		}
	case "type_spec", "type_alias":
		if typ := element.ChildByFieldName("type"); typ != nil {
			e.TypeText = typeSummary(src, typ)
		}
	}

	Classify(element, &e)
	return e
}

func typeSummary(src []byte, typ *sitter.Node) string {
	switch typ.Type() {
	case "struct_type":
		return "struct"
	case "interface_type":
		return "interface"
	default:
		return typ.Content(src)
	}
}

// FileEntries returns entries for the package-level declarations of a file
// and the fields of its struct types, in source order. Declarations inside
// function bodies are left out.
func FileEntries(result *parser.ParseResult) []Entry {
	var entries []Entry
	add := func(element, name *sitter.Node) {
		if name == nil {
			return
		}
		if text := result.NodeText(name); text == "" || text == "_" {
			return
		}
		entries = append(entries, FromNode(result.Source, element, name))
	}

	var visit func(node *sitter.Node)
	visit = func(node *sitter.Node) {
		switch node.Type() {
		case "block", "func_literal":
			return
		}

		switch parser.GetGoEntityType(node) {
		case "function", "method", "type":
			add(node, node.ChildByFieldName("name"))
		case "constant", "variable", "field":
			named := false
			for i := 0; i < int(node.NamedChildCount()); i++ {
				child := node.NamedChild(i)
				if child.Type() == "identifier" || child.Type() == "field_identifier" {
					add(node, child)
					named = true
				}
			}
			if !named && node.Type() == "field_declaration" {
				add(node, embeddedName(node))
			}
		}

		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child != nil {
				visit(child)
			}
		}
	}
	if result.Root != nil {
		visit(result.Root)
	}
	return entries
}

// embeddedName returns the type name an embedded field is known by:
// Stringer for fmt.Stringer, T for *T or T[int].
func embeddedName(field *sitter.Node) *sitter.Node {
	typ := field.ChildByFieldName("type")
	for typ != nil {
		switch typ.Type() {
		case "type_identifier":
			return typ
		case "qualified_type":
			typ = typ.ChildByFieldName("name")
		case "generic_type":
			typ = typ.ChildByFieldName("type")
		case "pointer_type":
			typ = typ.NamedChild(0)
		default:
			return nil
		}
	}
	return nil
}

// ImportedPackages returns one package entry per distinct name the file's
// imports bind. Blank and dot imports bind no name.
func ImportedPackages(result *parser.ParseResult) []Entry {
	seen := make(map[string]bool)
	var entries []Entry
	for _, imp := range result.Imports() {
		name := imp.VisibleName()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, Package(name))
	}
	return entries
}

