package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// offsetAt converts an LSP position (zero-based line, UTF-16 column) to a
// byte offset in content. Lines past the end clamp to len(content) and
// columns past the end of a line clamp to the line end.
func offsetAt(content string, pos protocol.Position) int {
	offset := 0
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		next := strings.IndexByte(content[offset:], '\n')
		if next < 0 {
			return len(content)
		}
		offset += next + 1
	}

	for units := protocol.UInteger(0); units < pos.Character && offset < len(content); {
		r, w := utf8.DecodeRuneInString(content[offset:])
		if r == '\n' {
			break
		}
		n := protocol.UInteger(1)
		if r >= 0x10000 {
			n = 2
		}
		if units+n > pos.Character {
			break
		}
		units += n
		offset += w
	}
	return offset
}

// positionAt converts a byte offset in content to an LSP position. It is
// the inverse of offsetAt for offsets on rune boundaries.
func positionAt(content string, offset int) protocol.Position {
	offset = min(max(offset, 0), len(content))
	lineStart := strings.LastIndexByte(content[:offset], '\n') + 1
	line := strings.Count(content[:lineStart], "\n")

	var units protocol.UInteger
	for _, r := range content[lineStart:offset] {
		units++
		if r >= 0x10000 {
			units++
		}
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: units}
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return filepath.FromSlash(u.Path)
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
