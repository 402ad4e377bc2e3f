// Package codec converts between text and domain.Document.
//
// Parsing is a two-stage process: strict JSON first, YAML for anything that
// is not valid JSON. Both stages preserve key order. Numbers are kept as
// json.Number literals so that serialization reproduces them exactly.
//
// Serialization always produces JSON in the document's own key order.
package codec
