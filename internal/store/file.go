package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	perrors "github.com/abgdnv/catalog/internal/errors"
)

var _ Snapshot = (*FileSnapshot)(nil)

// FileSnapshot persists the collection as a pretty-printed JSON array in a single file.
type FileSnapshot struct {
	path string
}

// NewFileSnapshot creates a snapshot stored at path. The file is created on first write.
func NewFileSnapshot(path string) *FileSnapshot {
	return &FileSnapshot{path: path}
}

// Path returns the location of the backing file.
func (f *FileSnapshot) Path() string {
	return f.path
}

// Read decodes the backing file.
// Returns ErrStorage if the file cannot be read, ErrCorruptStorage if it is not a product array.
func (f *FileSnapshot) Read(_ context.Context) ([]Product, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", perrors.ErrStorage, f.path, err)
	}
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %w", perrors.ErrCorruptStorage, f.path, err)
	}
	return products, nil
}

// Write overwrites the backing file with the full collection.
func (f *FileSnapshot) Write(_ context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode products: %w", perrors.ErrStorage, err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", perrors.ErrStorage, f.path, err)
	}
	return nil
}
