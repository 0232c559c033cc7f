// Package store persists and loads the IndexFile.
package store

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sp00kydogz/CuadernoCLI/internal/models"
)

// DefaultFileName is the index file created inside the note root. The
// reserved prefix keeps it out of scans.
const DefaultFileName = "_index.json"

// Store saves and loads a whole index at a fixed location.
//
// Load returns an error wrapping apperr.ErrNotFound when nothing has been
// saved yet, and apperr.ErrMalformedIndex when the persisted data cannot be
// decoded.
type Store interface {
	Save(ctx context.Context, idx *models.IndexFile) error
	Load(ctx context.Context) (*models.IndexFile, error)
	Path() string
}

// DefaultPath returns the index location inside root.
func DefaultPath(root string) string {
	return filepath.Join(root, DefaultFileName)
}

// ForPath picks the backend by file extension: SQLite for .db and .sqlite,
// JSON for anything else.
func ForPath(path string) Store {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		return NewSQLite(path)
	default:
		return NewJSON(path)
	}
}

// Save writes idx to path using the backend ForPath selects.
func Save(ctx context.Context, idx *models.IndexFile, path string) error {
	return ForPath(path).Save(ctx, idx)
}

// Load reads the index at path using the backend ForPath selects.
func Load(ctx context.Context, path string) (*models.IndexFile, error) {
	return ForPath(path).Load(ctx)
}

// normalize fills in what a decoder may leave nil so loaded indexes look
// like freshly built ones.
func normalize(idx *models.IndexFile) {
	if idx.Entries == nil {
		idx.Entries = []models.IndexEntry{}
	}
	for i := range idx.Entries {
		if idx.Entries[i].Tags == nil {
			idx.Entries[i].Tags = []string{}
		}
	}
}
