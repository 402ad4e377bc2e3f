package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
)

// Marshal serializes doc to compact JSON, keeping the document's key order.
// A nil document serializes as an empty object.
func Marshal(doc *domain.Document) ([]byte, error) {
	if doc == nil {
		doc = domain.NewDocument()
	}
	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// MarshalIndent is like Marshal but indents nested values with two spaces.
func MarshalIndent(doc *domain.Document) ([]byte, error) {
	data, err := Marshal(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent document: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode produces the bytes written to a destination: indented JSON unless
// compact is set, terminated by a newline.
func Encode(doc *domain.Document, compact bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if compact {
		data, err = Marshal(doc)
	} else {
		data, err = MarshalIndent(doc)
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
