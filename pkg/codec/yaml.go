package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
)

// maxDepth bounds nesting, including alias expansion.
const maxDepth = 1000

// Nodes produced by expanding aliases are limited to one per input byte,
// with a floor so small documents can still reuse anchors freely.
const minAliasBudget = 10000

const (
	tagNull  = "!!null"
	tagBool  = "!!bool"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagMerge = "!!merge"
)

func parseYAML(data []byte) (*domain.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return nil, errors.New("empty document")
	}

	d := &yamlDecoder{budget: max(minAliasBudget, len(data))}
	v, err := d.value(&root, 0, false)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(*domain.Document)
	if !ok {
		return nil, fmt.Errorf("document root must be a mapping, got %s", describe(v))
	}
	return doc, nil
}

// yamlDecoder converts a node tree, counting the nodes that alias
// expansion produces against budget.
type yamlDecoder struct {
	budget   int
	expanded int
}

func (d *yamlDecoder) value(n *yaml.Node, depth int, aliased bool) (any, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("line %d: nesting deeper than %d levels", n.Line, maxDepth)
	}
	if aliased {
		d.expanded++
		if d.expanded > d.budget {
			return nil, fmt.Errorf("line %d: aliases expand to more than %d nodes", n.Line, d.budget)
		}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.value(n.Content[0], depth+1, aliased)

	case yaml.AliasNode:
		return d.value(n.Alias, depth+1, true)

	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := d.value(item, depth+1, aliased)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil

	case yaml.MappingNode:
		return d.mapping(n, depth, aliased)

	case yaml.ScalarNode:
		return yamlScalar(n)

	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

// mapping converts a mapping node. Keys set explicitly win over merged
// ones, and earlier merge sources win over later ones.
func (d *yamlDecoder) mapping(n *yaml.Node, depth int, aliased bool) (*domain.Document, error) {
	doc := domain.NewDocument()
	var merged []*domain.Document

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]

		if k.Kind == yaml.ScalarNode && k.ShortTag() == tagMerge {
			sources, err := d.mergeSources(v, depth, aliased)
			if err != nil {
				return nil, err
			}
			merged = append(merged, sources...)
			continue
		}

		key, err := yamlKey(k)
		if err != nil {
			return nil, err
		}
		val, err := d.value(v, depth+1, aliased)
		if err != nil {
			return nil, err
		}
		doc.Set(key, val)
	}

	for _, src := range merged {
		for pair := src.Oldest(); pair != nil; pair = pair.Next() {
			if _, exists := doc.Get(pair.Key); !exists {
				doc.Set(pair.Key, pair.Value)
			}
		}
	}
	return doc, nil
}

func (d *yamlDecoder) mergeSources(n *yaml.Node, depth int, aliased bool) ([]*domain.Document, error) {
	v, err := d.value(n, depth+1, aliased)
	if err != nil {
		return nil, err
	}
	switch val := v.(type) {
	case *domain.Document:
		return []*domain.Document{val}, nil
	case []any:
		out := make([]*domain.Document, 0, len(val))
		for _, item := range val {
			doc, ok := item.(*domain.Document)
			if !ok {
				return nil, fmt.Errorf("line %d: merge sequence must contain mappings", n.Line)
			}
			out = append(out, doc)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: merge value must be a mapping or a sequence of mappings", n.Line)
	}
}

func yamlKey(k *yaml.Node) (string, error) {
	if k.Kind == yaml.AliasNode && k.Alias != nil {
		k = k.Alias
	}
	if k.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
	}
	return k.Value, nil
}

func yamlScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case tagNull:
		return nil, nil

	case tagBool:
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return b, nil

	case tagInt:
		var i int64
		if err := n.Decode(&i); err == nil {
			return json.Number(strconv.FormatInt(i, 10)), nil
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return json.Number(strconv.FormatUint(u, 10)), nil
		}
		return nil, fmt.Errorf("line %d: integer %q out of range", n.Line, n.Value)

	case tagFloat:
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("line %d: %q is not representable in JSON", n.Line, n.Value)
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil

	default:
		// strings, timestamps, binary and custom tags keep their literal text
		return n.Value, nil
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "sequence"
	default:
		return "scalar"
	}
}
