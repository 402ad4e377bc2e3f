/*
Package domain contains the core types shared by the outputs-to-inputs converter.

It defines the ordered Document tree that every loader produces and every
writer consumes, the error taxonomy used across the module, and the events
emitted while a mapping is applied. This package performs no I/O.

# Key Entities

  - Document: an insertion-ordered key/value tree (outputs, mappings and results).
  - ConfigError, ParseError, IOError, MappingError: typed failures, each matching a sentinel via errors.Is.
  - TransformHooks: observability callbacks for entries and whole conversions.
*/
package domain
