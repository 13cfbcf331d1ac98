package completion

import (
	"regexp"
	"strings"

	"github.com/gosense/gosense/internal/parser"
)

// importLine matches the text of a line up to the cursor when the cursor
// sits inside an import path literal: an optional import keyword, an
// optional alias, then an unclosed quote.
var importLine = regexp.MustCompile("^\\s*(import\\s+)?(?:[\\p{L}_][\\p{L}\\p{N}_]*\\s+|[._]\\s+)?([\"`][^\"`]*)$")

var (
	importBlockOpen = regexp.MustCompile(`^import\s*\($`)
	importKeyword   = regexp.MustCompile("^import(?:\\s|[\"`]|$)")
)

// ImportPrefix returns the raw import path typed before offset, opening
// quote included, when offset lies inside an import path literal. A
// literal counts when its line starts with the import keyword or it sits
// in an import block.
func ImportPrefix(file *parser.ParseResult, offset int) (string, bool) {
	if file == nil || offset <= 0 || offset > len(file.Source) {
		return "", false
	}

	src := file.Source
	lineStart := strings.LastIndexByte(string(src[:offset]), '\n') + 1
	m := importLine.FindSubmatch(src[lineStart:offset])
	if m == nil {
		return "", false
	}
	if len(m[1]) > 0 || inImportDecl(file, offset) || inImportBlock(src[:lineStart]) {
		return string(m[2]), true
	}
	return "", false
}

func inImportDecl(file *parser.ParseResult, offset int) bool {
	node := file.NodeAt(offset - 1)
	return parser.Ancestor(node, "import_spec", "import_spec_list", "import_declaration") != nil
}

// inImportBlock reports whether before ends inside an open "import (" group.
// Broken sources may not yield an import declaration node.
func inImportBlock(before []byte) bool {
	lines := strings.Split(string(before), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, ")"):
			return false
		case importBlockOpen.MatchString(line):
			return true
		case importKeyword.MatchString(line):
			return false
		case strings.HasPrefix(line, "package "), strings.HasPrefix(line, "func "),
			strings.HasPrefix(line, "type "), strings.HasPrefix(line, "var "),
			strings.HasPrefix(line, "const "):
			return false
		}
	}
	return false
}

// IdentifierPrefix returns the identifier characters immediately before
// offset.
func IdentifierPrefix(src []byte, offset int) string {
	if offset > len(src) {
		offset = len(src)
	}
	start := offset
	for start > 0 && isIdentByte(src[start-1]) {
		start--
	}
	return string(src[start:offset])
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= 0x80 ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
