package domain

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Document is an insertion-ordered tree of key/value pairs.
//
// Values held by a Document are restricted to: string, json.Number, bool,
// nil, *Document and []any (whose elements follow the same rule).
type Document = orderedmap.OrderedMap[string, any]

// NewDocument creates an empty Document.
func NewDocument() *Document {
	return orderedmap.New[string, any]()
}

// Keys returns the document keys in insertion order.
func Keys(doc *Document) []string {
	if doc == nil {
		return nil
	}
	keys := make([]string, 0, doc.Len())
	for pair := doc.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Clone returns a structural copy of a document value.
// Documents and lists are copied recursively; scalars are immutable and returned as is.
func Clone(v any) any {
	switch val := v.(type) {
	case *Document:
		return CloneDocument(val)
	case []any:
		if val == nil {
			return []any(nil)
		}
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Clone(item)
		}
		return out
	default:
		return val
	}
}

// CloneDocument deep-copies doc, preserving key order.
func CloneDocument(doc *Document) *Document {
	if doc == nil {
		return nil
	}
	out := NewDocument()
	for pair := doc.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, Clone(pair.Value))
	}
	return out
}

// Equal reports whether a and b are the same document value.
// Documents are equal when they hold the same keys in the same order with equal values.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case *Document:
		bv, ok := b.(*Document)
		if !ok {
			return false
		}
		if av == nil || bv == nil {
			return av == bv
		}
		if av.Len() != bv.Len() {
			return false
		}
		for pa, pb := av.Oldest(), bv.Oldest(); pa != nil; pa, pb = pa.Next(), pb.Next() {
			if pa.Key != pb.Key || !Equal(pa.Value, pb.Value) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case json.Number:
		bv, ok := b.(json.Number)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}
