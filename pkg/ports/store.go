package ports

import (
	"context"

	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
)

// DocumentSource loads documents by location.
type DocumentSource interface {
	// Load reads and parses the document at location.
	// Unreadable locations return a *domain.IOError, malformed text a *domain.ParseError.
	Load(ctx context.Context, location string) (*domain.Document, error)
}

// DocumentSink persists documents by location.
type DocumentSink interface {
	// Write serializes doc as JSON and stores it at location, returning the
	// number of bytes stored.
	// Implementations must not leave a partially written destination behind.
	Write(ctx context.Context, location string, doc *domain.Document, opts WriteOptions) (int, error)
}

// WriteOptions controls serialization in DocumentSink.Write.
type WriteOptions struct {
	// Compact disables indentation.
	Compact bool
}

// DocumentStore is implemented by adapters that can both read and write.
type DocumentStore interface {
	DocumentSource
	DocumentSink
}
