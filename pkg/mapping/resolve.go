package mapping

import (
	"fmt"

	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
)

// resolve descends into doc along path.
// found is false when a key is absent or a scalar is reached with segments left.
// Descending into a list is not supported and returns an error.
func resolve(doc *domain.Document, path Path) (value any, found bool, err error) {
	if doc == nil {
		return nil, false, nil
	}

	var current any = doc
	for i, segment := range path.Segments {
		switch node := current.(type) {
		case *domain.Document:
			next, ok := node.Get(segment)
			if !ok {
				return nil, false, nil
			}
			current = next
		case []any:
			return nil, false, fmt.Errorf("segment %q traverses into a list at %q, which is not supported",
				segment, Path{Segments: path.Segments[:i]})
		default:
			return nil, false, nil
		}
	}
	return current, true, nil
}
