package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/NotMyFault/cloudify-plugin/pkg/codec"
	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
	"github.com/NotMyFault/cloudify-plugin/pkg/ports"
)

var (
	// ErrOutsideRoot is wrapped in a *domain.IOError when a location escapes the store root.
	ErrOutsideRoot = errors.New("location is outside the working directory")

	errEmptyLocation = errors.New("location cannot be empty")
)

// Store implements ports.DocumentStore on the local filesystem.
// Every location is resolved relative to Root and must stay inside it.
type Store struct {
	Root string
}

// New creates a Store rooted at root.
// If root is empty, it defaults to the current directory.
func New(root string) *Store {
	if root == "" {
		root = "."
	}
	return &Store{Root: root}
}

// Resolve returns the absolute path for location, or a *domain.IOError if it escapes Root.
func (s *Store) Resolve(op, location string) (string, error) {
	if location == "" {
		return "", &domain.IOError{Op: op, Path: location, Err: errEmptyLocation}
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", &domain.IOError{Op: op, Path: location, Err: fmt.Errorf("invalid root: %w", err)}
	}

	target := location
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(root, target)
	if err != nil || !filepath.IsLocal(rel) {
		return "", &domain.IOError{Op: op, Path: location, Err: ErrOutsideRoot}
	}
	return target, nil
}

// Load reads and parses the JSON or YAML document at location.
func (s *Store) Load(ctx context.Context, location string) (*domain.Document, error) {
	path, err := s.Resolve("read", location)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.IOError{Op: "read", Path: location, Err: err}
	}

	return codec.ParseFrom(location, data)
}

// Write persists doc as JSON at location atomically.
// It writes to a temporary file in the destination directory, syncs it and renames it into place.
// A missing parent directory is created only when its own parent exists.
func (s *Store) Write(ctx context.Context, location string, doc *domain.Document, opts ports.WriteOptions) (int, error) {
	path, err := s.Resolve("write", location)
	if err != nil {
		return 0, err
	}

	data, err := codec.Encode(doc, opts.Compact)
	if err != nil {
		return 0, &domain.IOError{Op: "write", Path: location, Err: err}
	}

	if err := ensureParent(path); err != nil {
		return 0, &domain.IOError{Op: "write", Path: location, Err: err}
	}

	if err := writeAtomic(path, data); err != nil {
		return 0, &domain.IOError{Op: "write", Path: location, Err: err}
	}
	return len(data), nil
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	// Mkdir (not MkdirAll): fails when more than one level is missing.
	if err := os.Mkdir(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	// same directory keeps the rename on one filesystem
	tmpFile, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
