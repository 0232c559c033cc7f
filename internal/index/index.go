// Package index builds the derived IndexFile from the notes under a root.
package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sp00kydogz/CuadernoCLI/internal/checksum"
	"github.com/sp00kydogz/CuadernoCLI/internal/models"
	"github.com/sp00kydogz/CuadernoCLI/internal/parser"
	"github.com/sp00kydogz/CuadernoCLI/internal/storage"
	"github.com/sp00kydogz/CuadernoCLI/internal/summary"
)

// Builder turns a scanned note root into an IndexFile.
type Builder struct {
	scanner storage.Scanner
	root    string
	logger  *slog.Logger
	now     func() time.Time
}

// NewBuilder creates a builder for the notes returned by scanner. root is
// the note root directory; its base name labels the index.
func NewBuilder(scanner storage.Scanner, root string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		scanner: scanner,
		root:    root,
		logger:  logger,
		now:     time.Now,
	}
}

// Rebuild scans every note and returns a fresh index sorted by last
// modification, newest first. Any unreadable note fails the whole rebuild.
func (b *Builder) Rebuild(ctx context.Context, includeSummary bool) (*models.IndexFile, error) {
	start := b.now()

	notes, err := b.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}

	// Scan order is unspecified; fix it so equal timestamps sort the same way
	// on every rebuild.
	sort.Slice(notes, func(i, j int) bool { return notes[i].Path < notes[j].Path })

	entries := make([]models.IndexEntry, 0, len(notes))
	for _, n := range notes {
		entries = append(entries, BuildEntry(n, includeSummary))
		b.logger.Debug("index: entry built", slog.String("path", n.Path))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Modified.After(entries[j].Modified)
	})

	idx := &models.IndexFile{
		Version:     models.IndexVersion,
		GeneratedAt: b.now().UTC(),
		Root:        filepath.Base(b.root),
		Entries:     entries,
	}

	b.logger.Info("index: rebuilt",
		slog.Int("entries", len(entries)),
		slog.Bool("summary", includeSummary),
		slog.Int64("duration_ms", b.now().Sub(start).Milliseconds()))

	return idx, nil
}

// BuildEntry derives the index entry for a single note.
func BuildEntry(n models.RawNote, includeSummary bool) models.IndexEntry {
	h := parser.Parse(n.Content)
	category, subcategory := Categorize(n.Path)

	title := DeriveTitle(n.Path)
	if h.Title != nil {
		title = *h.Title
	}

	tags := h.Tags
	if tags == nil {
		tags = []string{}
	}

	e := models.IndexEntry{
		ID:          strings.ToLower(n.Path),
		Path:        n.Path,
		Title:       title,
		Category:    category,
		Subcategory: subcategory,
		Date:        h.Date,
		Tags:        tags,
		Modified:    n.Modified.UTC(),
		Hash:        checksum.Sum([]byte(n.Content)),
	}
	if includeSummary {
		e.Summary = summary.Summarize(n.Content, h.HasBlock)
	}
	return e
}

// Categorize derives the category (first folder) and subcategory (second
// folder) from a '/'-separated relative path. A note directly under the root
// has no category; a note directly under a category has no subcategory.
func Categorize(rel string) (string, *string) {
	parts := strings.Split(rel, "/")
	category := ""
	if len(parts) > 1 {
		category = parts[0]
	}
	var subcategory *string
	if len(parts) > 2 {
		subcategory = &parts[1]
	}
	return category, subcategory
}
