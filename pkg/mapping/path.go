package mapping

import (
	"errors"
	"strings"
)

// Path is a parsed path expression: the keys to descend through, outermost first.
// The zero Path addresses the document root.
type Path struct {
	Segments []string
}

// String returns the dot-delimited form of the path.
func (p Path) String() string {
	return strings.Join(p.Segments, ".")
}

// IsRoot reports whether p addresses the whole document.
func (p Path) IsRoot() bool {
	return len(p.Segments) == 0
}

var errEmptySegment = errors.New("path expression contains an empty segment")

// ParsePath parses a dot-delimited path expression.
// "" yields the root path; "a" and "a.b.c" yield one and three segments.
func ParsePath(expr string) (Path, error) {
	if expr == "" {
		return Path{}, nil
	}

	segments := strings.Split(expr, ".")
	for _, s := range segments {
		if s == "" {
			return Path{}, errEmptySegment
		}
	}
	return Path{Segments: segments}, nil
}
