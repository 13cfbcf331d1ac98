package parser

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// newGoParser creates a tree-sitter parser configured for Go.
func newGoParser() (*sitter.Parser, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	return parser, nil
}

// GoNodeTypes maps tree-sitter node types to the declaration kinds that
// produce completion entries.
var GoNodeTypes = map[string]string{
	"function_declaration": "function",
	"method_declaration":   "method",
	"type_spec":            "type",
	"type_alias":           "type",
	"const_spec":           "constant",
	"var_spec":             "variable",
	"field_declaration":    "field",
	"import_spec":          "import",
	"package_clause":       "package",
}

// GetGoEntityType returns the declaration kind for a tree-sitter node,
// or an empty string if the node is not a recognized declaration.
func GetGoEntityType(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return GoNodeTypes[node.Type()]
}

// PackageClause returns the package name declared by the file.
func (r *ParseResult) PackageClause() (string, error) {
	if r.Root == nil {
		return "", ErrNoPackageClause
	}
	for i := 0; i < int(r.Root.NamedChildCount()); i++ {
		child := r.Root.NamedChild(i)
		if child == nil || child.Type() != "package_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			id := child.NamedChild(j)
			if id.Type() != "package_identifier" || id.IsMissing() {
				continue
			}
			if name := r.NodeText(id); name != "" {
				return name, nil
			}
		}
		line := child.StartPoint().Row + 1
		return "", fmt.Errorf("%w at line %d", ErrNoPackageClause, line)
	}
	return "", ErrNoPackageClause
}

// Import is one import spec of a file.
type Import struct {
	// Path is the unquoted import path.
	Path string
	// Alias is the explicit name, "_" or "." when present.
	Alias string
	// Line is the 1-based line of the spec.
	Line int
}

// VisibleName returns the identifier the import binds in the file scope,
// or "" for blank and dot imports.
func (i Import) VisibleName() string {
	switch i.Alias {
	case "_", ".":
		return ""
	case "":
		return AssumedPackageName(i.Path)
	default:
		return i.Alias
	}
}

// Imports returns the file's import specs in source order.
func (r *ParseResult) Imports() []Import {
	var imports []Import
	for _, spec := range r.FindNodesByType("import_spec") {
		pathNode := spec.ChildByFieldName("path")
		if pathNode == nil {
			continue
		}
		p := TrimQuotes(r.NodeText(pathNode))
		if p == "" {
			continue
		}

		imp := Import{
			Path: p,
			Line: int(spec.StartPoint().Row) + 1,
		}
		if name := spec.ChildByFieldName("name"); name != nil {
			imp.Alias = r.NodeText(name)
		}
		imports = append(imports, imp)
	}
	return imports
}

// TrimQuotes strips the quotes of an interpreted or raw string literal.
func TrimQuotes(s string) string {
	return strings.Trim(s, "\"`")
}

// AssumedPackageName returns the package name an import path is expected
// to declare: the last element, skipping a major version suffix, without a
// "go-" prefix and cut at the first non-identifier rune.
func AssumedPackageName(importPath string) string {
	base := path.Base(importPath)
	if strings.HasPrefix(base, "v") {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			if dir := path.Dir(importPath); dir != "." {
				base = path.Base(dir)
			}
		}
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexFunc(base, notIdentifier); i >= 0 {
		base = base[:i]
	}
	return base
}

func notIdentifier(r rune) bool {
	return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}
