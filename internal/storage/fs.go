package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sp00kydogz/CuadernoCLI/internal/apperr"
	"github.com/sp00kydogz/CuadernoCLI/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root    string // absolute path to the note root
	workers int
}

// Option configures an FS.
type Option func(*FS)

// WithWorkers bounds the number of notes read concurrently during Scan.
func WithWorkers(n int) Option {
	return func(f *FS) {
		if n > 0 {
			f.workers = n
		}
	}
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string, opts ...Option) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}

	f := &FS{root: abs, workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Root returns the absolute note root.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a relative path against the root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes note root: %s", rel)
	}
	return abs, nil
}

// Scan walks the root and reads every eligible note. Hidden directories and
// the version-control directory are not descended into. Reads run on a
// bounded worker pool; the result order is unspecified.
func (f *FS) Scan(ctx context.Context) ([]models.RawNote, error) {
	var rels []string
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		rel, relErr := filepath.Rel(f.root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if walkErr != nil {
			return &apperr.ScanError{Path: rel, Err: walkErr}
		}
		if p == f.root {
			return nil
		}
		if d.IsDir() {
			if SkipSegment(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsNote(rel) {
			rels = append(rels, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: scan: %w", err)
	}

	notes := make([]models.RawNote, len(rels))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, rel := range rels {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			n, err := f.readNote(rel)
			if err != nil {
				return &apperr.ScanError{Path: rel, Err: err}
			}
			notes[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("storage: scan: %w", err)
	}
	return notes, nil
}

func (f *FS) readNote(rel string) (models.RawNote, error) {
	abs := filepath.Join(f.root, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return models.RawNote{}, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return models.RawNote{}, err
	}
	return models.RawNote{
		Path:     rel,
		Content:  DecodeText(data),
		Modified: info.ModTime().UTC(),
	}, nil
}

// DecodeText interprets data as UTF-8 text. A leading byte-order mark is
// dropped and selects UTF-16 when it says so; invalid sequences become U+FFFD.
func DecodeText(data []byte) string {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(out)
}

// Read returns the raw bytes of a file under the root.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Exists reports whether a regular file or directory exists at path.
func (f *FS) Exists(path string) (bool, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return true, nil
}

// Write atomically writes content to a file under the root, creating
// parent directories as needed.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	return WriteFileAtomic(abs, content)
}

// WriteFileAtomic writes content to abs: tmp file → fsync → rename.
func WriteFileAtomic(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cuaderno-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
