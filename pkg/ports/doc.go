/*
Package ports defines the driven ports (interfaces) of the converter.

These interfaces decouple the conversion pipeline from where documents come
from and where results go, so the same Converter runs against a working
directory, an in-memory store, or an HTTP request body.

# Key Interfaces

  - DocumentSource: loads and parses a document from a location.
  - DocumentSink: serializes and persists a document to a location.
  - DocumentStore: both, as implemented by the file and memory adapters.
*/
package ports
