package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sp00kydogz/CuadernoCLI/internal/apperr"
	"github.com/sp00kydogz/CuadernoCLI/internal/models"
	"github.com/sp00kydogz/CuadernoCLI/internal/storage"
)

// JSON stores the index as an indented UTF-8 JSON document.
type JSON struct {
	path string
}

// NewJSON returns a JSON store writing to path.
func NewJSON(path string) *JSON {
	return &JSON{path: path}
}

// Path returns the index file location.
func (s *JSON) Path() string { return s.path }

// Save overwrites the index file atomically.
func (s *JSON) Save(_ context.Context, idx *models.IndexFile) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idx); err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	if err := storage.WriteFileAtomic(s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("store: save %s: %w", s.path, err)
	}
	return nil
}

// Load reads and decodes the index file.
func (s *JSON) Load(_ context.Context) (*models.IndexFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("store: load %s: %w", s.path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("store: load %s: %w", s.path, err)
	}

	var idx models.IndexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", s.path, errors.Join(apperr.ErrMalformedIndex, err))
	}
	if idx.Version != models.IndexVersion {
		return nil, fmt.Errorf("store: decode %s: %w: unsupported version %d",
			s.path, apperr.ErrMalformedIndex, idx.Version)
	}
	normalize(&idx)
	return &idx, nil
}
