// Package lookup builds completion entries for Go syntax nodes, keywords
// and package names.
package lookup

import (
	"fmt"
)

// Style is the presentation category of an entry (its icon in an editor).
type Style int

const (
	StyleNone Style = iota
	StyleInterface
	// StyleAggregate covers struct-like and other composite type names.
	StyleAggregate
	StyleFunction
	StyleMethod
	StyleVariable
	StyleConstant
	StyleField
	StylePackage
)

var styleNames = map[Style]string{
	StyleNone:      "",
	StyleInterface: "interface",
	StyleAggregate: "struct",
	StyleFunction:  "function",
	StyleMethod:    "method",
	StyleVariable:  "variable",
	StyleConstant:  "constant",
	StyleField:     "field",
	StylePackage:   "package",
}

func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Entry is one completion candidate as presented to the user.
type Entry struct {
	// Text is both the displayed label and the text inserted by default.
	Text     string `json:"text" yaml:"text"`
	TailText string `json:"tail_text,omitempty" yaml:"tail_text,omitempty"`
	TypeText string `json:"type_text,omitempty" yaml:"type_text,omitempty"`
	Bold     bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
	Style    Style  `json:"style,omitempty" yaml:"style,omitempty"`
	// Insert, when set, rewrites the text inserted on acceptance.
	Insert InsertHandler `json:"-" yaml:"-"`
}

// Insertion is the text placed in the document and the caret position
// within it after acceptance.
type Insertion struct {
	Text  string
	Caret int
}

// Apply returns what accepting e inserts.
func (e Entry) Apply() Insertion {
	if e.Insert == nil {
		return Insertion{Text: e.Text, Caret: len(e.Text)}
	}
	return e.Insert.Insert(e.Text)
}

// InsertHandler post-processes the inserted text of an accepted entry.
type InsertHandler interface {
	Insert(text string) Insertion
}

// CallInsertHandler appends invocation parentheses. The caret lands
// between them when the callable takes parameters.
type CallInsertHandler struct {
	HasParams bool
}

func (h CallInsertHandler) Insert(text string) Insertion {
	ins := Insertion{Text: text + "()", Caret: len(text) + 2}
	if h.HasParams {
		ins.Caret = len(text) + 1
	}
	return ins
}

// KeywordInsertHandler appends a separating space.
type KeywordInsertHandler struct{}

func (KeywordInsertHandler) Insert(text string) Insertion {
	return Insertion{Text: text + " ", Caret: len(text) + 1}
}

// Keywords are the reserved words of Go.
var Keywords = []string{
	"break", "case", "chan", "const", "continue", "default", "defer",
	"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
	"interface", "map", "package", "range", "return", "select", "struct",
	"switch", "type", "var",
}

// Keyword returns the entry for a reserved word.
func Keyword(word string) Entry {
	return Entry{
		Text:     word,
		Bold:     true,
		TypeText: "keyword",
		Insert:   KeywordInsertHandler{},
	}
}

// Package returns the entry for a package name.
func Package(name string) Entry {
	return Entry{
		Text:     name,
		Style:    StylePackage,
		TypeText: "package",
	}
}
