// Package storage defines the note-root file-system abstraction.
package storage

import (
	"context"

	"github.com/sp00kydogz/CuadernoCLI/internal/models"
)

// Scanner enumerates every eligible note under a root.
type Scanner interface {
	// Scan reads all eligible notes. Any unreadable note aborts the scan.
	Scan(ctx context.Context) ([]models.RawNote, error)
}

// Provider is the interface for note-root file operations.
type Provider interface {
	Scanner
	// Root returns the absolute note root.
	Root() string
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Exists reports whether a file exists at path (relative to root).
	Exists(path string) (bool, error)
}

var _ Provider = (*FS)(nil)
