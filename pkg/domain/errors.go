package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	// ErrConfig marks invalid or conflicting job configuration.
	ErrConfig = errors.New("configuration error")

	// ErrParse marks text that is neither valid JSON nor valid YAML, or whose root is not a mapping.
	ErrParse = errors.New("parse error")

	// ErrIO marks a source that cannot be read or a destination that cannot be written.
	ErrIO = errors.New("i/o error")

	// ErrMapping marks a structurally invalid mapping entry.
	ErrMapping = errors.New("mapping error")
)

// ConfigError lists every problem found while validating a job configuration.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid configuration: " + e.Problems[0]
	}
	msg := fmt.Sprintf("invalid configuration, %d problems:\n", len(e.Problems))
	for i, p := range e.Problems {
		msg += fmt.Sprintf("  %d. %s\n", i+1, p)
	}
	return strings.TrimRight(msg, "\n")
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// ParseError reports a document that failed both parse stages.
// JSONErr is nil when the text was valid JSON but not an acceptable document.
type ParseError struct {
	Source  string // file location or "inline"
	JSONErr error
	YAMLErr error
	Reason  string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("cannot parse ")
	if e.Source != "" {
		b.WriteString(e.Source)
	} else {
		b.WriteString("document")
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.JSONErr != nil {
		b.WriteString("; json: ")
		b.WriteString(e.JSONErr.Error())
	}
	if e.YAMLErr != nil {
		b.WriteString("; yaml: ")
		b.WriteString(e.YAMLErr.Error())
	}
	return b.String()
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IOError wraps a filesystem failure with the operation and location involved.
type IOError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// MappingError reports a mapping entry whose path expression cannot be used.
type MappingError struct {
	Key    string // target key of the offending entry
	Path   string // path expression, when it was a string
	Reason string
	Value  any // offending value, when it was not a string
}

func (e *MappingError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("mapping entry %q: %s (got %T)", e.Key, e.Reason, e.Value)
	}
	if e.Path != "" {
		return fmt.Sprintf("mapping entry %q (path %q): %s", e.Key, e.Path, e.Reason)
	}
	return fmt.Sprintf("mapping entry %q: %s", e.Key, e.Reason)
}

func (e *MappingError) Is(target error) bool { return target == ErrMapping }

// Kind classifies err into one of the taxonomy names, or "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrMapping):
		return "mapping"
	default:
		return "internal"
	}
}
