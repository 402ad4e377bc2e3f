package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"

	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
)

// Parse parses JSON or YAML text into a Document.
// It is equivalent to ParseFrom with an empty source name.
func Parse(data []byte) (*domain.Document, error) {
	return ParseFrom("", data)
}

// ParseFrom parses JSON or YAML text into a Document, naming source in errors.
//
// Strict JSON is attempted first. Only text that is not valid JSON is handed
// to the YAML stage, so machine-generated JSON never goes through YAML typing
// rules. The root of the document must be a mapping.
func ParseFrom(source string, data []byte) (*domain.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &domain.ParseError{Source: source, Reason: "empty document"}
	}

	var raw json.RawMessage
	jsonErr := json.Unmarshal(data, &raw)
	if jsonErr == nil {
		doc, err := parseJSON(raw)
		if err != nil {
			return nil, &domain.ParseError{Source: source, Reason: err.Error()}
		}
		return doc, nil
	}

	doc, yamlErr := parseYAML(data)
	if yamlErr != nil {
		return nil, &domain.ParseError{Source: source, JSONErr: jsonErr, YAMLErr: yamlErr}
	}
	return doc, nil
}

// parseJSON builds an ordered tree from text already known to be valid JSON.
func parseJSON(data []byte) (*domain.Document, error) {
	value, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, err
	}
	if typ != jsonparser.Object {
		return nil, fmt.Errorf("document root must be a mapping, got %s", typ)
	}
	v, err := jsonValue(value, typ)
	if err != nil {
		return nil, err
	}
	return v.(*domain.Document), nil
}

func jsonValue(data []byte, typ jsonparser.ValueType) (any, error) {
	switch typ {
	case jsonparser.Object:
		doc := domain.NewDocument()
		err := jsonparser.ObjectEach(data, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
			v, err := jsonValue(value, vt)
			if err != nil {
				return err
			}
			doc.Set(string(key), v)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return doc, nil

	case jsonparser.Array:
		list := []any{}
		var inner error
		_, err := jsonparser.ArrayEach(data, func(value []byte, vt jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = err
				return
			}
			v, err := jsonValue(value, vt)
			if err != nil {
				inner = err
				return
			}
			list = append(list, v)
		})
		if err != nil {
			return nil, err
		}
		if inner != nil {
			return nil, inner
		}
		return list, nil

	case jsonparser.String:
		return jsonparser.ParseString(data)

	case jsonparser.Number:
		return json.Number(string(data)), nil

	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(data)

	case jsonparser.Null:
		return nil, nil

	default:
		return nil, fmt.Errorf("unexpected JSON value of type %s", typ)
	}
}
