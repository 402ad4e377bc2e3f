package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/NotMyFault/cloudify-plugin/pkg/codec"
	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
	"github.com/NotMyFault/cloudify-plugin/pkg/ports"
)

// errNotFound is wrapped in a *domain.IOError for unknown locations.
var errNotFound = errors.New("no document stored")

// Store implements ports.DocumentStore in memory.
// Documents are kept as serialized bytes, so callers never share trees with the store.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// NewStoreFrom creates a store pre-filled with raw JSON or YAML text per location.
func NewStoreFrom(files map[string]string) *Store {
	s := NewStore()
	for location, text := range files {
		s.data[location] = []byte(text)
	}
	return s
}

// Put stores raw text at location without parsing it.
func (s *Store) Put(location string, data []byte) {
	cp := append([]byte(nil), data...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[location] = cp
}

// Get returns the raw bytes stored at location.
func (s *Store) Get(location string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[location]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Locations lists stored locations in lexical order.
func (s *Store) Locations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load parses the document stored at location.
func (s *Store) Load(ctx context.Context, location string) (*domain.Document, error) {
	data, ok := s.Get(location)
	if !ok {
		return nil, &domain.IOError{Op: "read", Path: location, Err: errNotFound}
	}
	return codec.ParseFrom(location, data)
}

// Write serializes doc and stores it at location.
func (s *Store) Write(ctx context.Context, location string, doc *domain.Document, opts ports.WriteOptions) (int, error) {
	data, err := codec.Encode(doc, opts.Compact)
	if err != nil {
		return 0, &domain.IOError{Op: "write", Path: location, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[location] = data
	return len(data), nil
}
