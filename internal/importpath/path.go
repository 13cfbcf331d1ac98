// Package importpath enumerates import path candidates for a partially
// typed import: packages of the module's toolchain and packages declared
// by source files below the requesting file.
package importpath

import (
	"strings"
)

// CleanupPath strips the surrounding quotes of an in-progress import path
// literal. Already clean input is returned unchanged, so CleanupPath is
// idempotent.
func CleanupPath(raw string) string {
	return strings.Trim(raw, "\"`")
}

// Shape classifies the in-progress text of an import path.
type Shape int

const (
	// ShapeBare has no leading dot.
	ShapeBare Shape = iota
	// ShapeDotSlash starts with "./".
	ShapeDotSlash
	// ShapeDot starts with "." but not "./".
	ShapeDot
)

func (s Shape) String() string {
	switch s {
	case ShapeDotSlash:
		return "dot-slash"
	case ShapeDot:
		return "dot"
	default:
		return "bare"
	}
}

// ShapeOf classifies a cleaned prefix.
func ShapeOf(prefix string) Shape {
	switch {
	case strings.HasPrefix(prefix, "./"):
		return ShapeDotSlash
	case strings.HasPrefix(prefix, "."):
		return ShapeDot
	default:
		return ShapeBare
	}
}

// Format returns the text inserted for identifier given the shape of what
// the user already typed.
func (s Shape) Format(identifier string) string {
	switch s {
	case ShapeDotSlash:
		return identifier
	case ShapeDot:
		return "/" + identifier
	default:
		return "./" + identifier
	}
}
