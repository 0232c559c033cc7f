// Package noteservice ties the note root, the index builder, the index store
// and the query engine together. CLI commands, the HTTP API and the MCP
// server all go through it.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sp00kydogz/CuadernoCLI/internal/apperr"
	"github.com/sp00kydogz/CuadernoCLI/internal/checksum"
	"github.com/sp00kydogz/CuadernoCLI/internal/index"
	"github.com/sp00kydogz/CuadernoCLI/internal/models"
	"github.com/sp00kydogz/CuadernoCLI/internal/parser"
	"github.com/sp00kydogz/CuadernoCLI/internal/query"
	"github.com/sp00kydogz/CuadernoCLI/internal/storage"
	"github.com/sp00kydogz/CuadernoCLI/internal/store"
)

const dateLayout = "2006-01-02"

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path     string   `json:"path"`
	Title    string   `json:"title"`
	Date     *string  `json:"date,omitempty"`
	Tags     []string `json:"tags"`
	Content  string   `json:"content"`
	Checksum string   `json:"checksum"`
}

// Notifier receives change notifications. The SSE broker implements it.
type Notifier interface {
	PublishIndexEvent(entries int)
	PublishNoteEvent(kind, path string)
}

type nopNotifier struct{}

func (nopNotifier) PublishIndexEvent(int)           {}
func (nopNotifier) PublishNoteEvent(string, string) {}

// Service coordinates storage, index and query operations.
type Service struct {
	notes    storage.Provider
	builder  *index.Builder
	store    store.Store
	searcher query.Searcher
	logger   *slog.Logger
	notifier Notifier

	includeSummary bool
	autoReindex    bool
	now            func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNotifier sets the receiver of change notifications.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithSummary controls whether rebuilt entries carry a summary.
func WithSummary(on bool) Option {
	return func(s *Service) { s.includeSummary = on }
}

// WithAutoReindex makes note writes rebuild and save the index afterwards.
func WithAutoReindex(on bool) Option {
	return func(s *Service) { s.autoReindex = on }
}

// WithClock replaces the wall clock used for dates and search recency.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
			s.searcher.Now = now
		}
	}
}

// NewService creates a service over the notes in p, persisting the index
// through st.
func NewService(p storage.Provider, st store.Store, opts ...Option) *Service {
	s := &Service{
		notes:          p,
		store:          st,
		logger:         slog.Default(),
		notifier:       nopNotifier{},
		includeSummary: true,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builder = index.NewBuilder(p, p.Root(), s.logger)
	return s
}

// Root returns the absolute note root.
func (s *Service) Root() string { return s.notes.Root() }

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }

// IndexPath returns where the index is persisted.
func (s *Service) IndexPath() string { return s.store.Path() }

// Rebuild scans the note root and returns a fresh index without saving it.
func (s *Service) Rebuild(ctx context.Context) (*models.IndexFile, error) {
	return s.builder.Rebuild(ctx, s.includeSummary)
}

// Save persists idx, replacing any stored index.
func (s *Service) Save(ctx context.Context, idx *models.IndexFile) error {
	return s.store.Save(ctx, idx)
}

// Reindex rebuilds and saves the index. Concurrent reindexes of the same root
// within this process run one at a time; a failed rebuild leaves the stored
// index untouched.
func (s *Service) Reindex(ctx context.Context) (*models.IndexFile, error) {
	mu := rootLock(s.Root())
	mu.Lock()
	defer mu.Unlock()

	idx, err := s.Rebuild(ctx)
	if err != nil {
		return nil, fmt.Errorf("noteservice: rebuild: %w", err)
	}
	if err := s.Save(ctx, idx); err != nil {
		return nil, fmt.Errorf("noteservice: save: %w", err)
	}
	s.logger.Info("index saved",
		slog.String("path", s.store.Path()),
		slog.Int("entries", len(idx.Entries)))
	s.notifier.PublishIndexEvent(len(idx.Entries))
	return idx, nil
}

// LoadIndex reads the stored index. An index that was never built is
// reported with apperr.ErrNotFound.
func (s *Service) LoadIndex(ctx context.Context) (*models.IndexFile, error) {
	return s.store.Load(ctx)
}

// List loads the index and applies a list filter.
func (s *Service) List(ctx context.Context, filter string) ([]models.IndexEntry, error) {
	idx, err := s.LoadIndex(ctx)
	if err != nil {
		return nil, err
	}
	return query.List(idx, filter), nil
}

// Search loads the index and ranks it against text.
func (s *Service) Search(ctx context.Context, text string) ([]query.Hit, error) {
	idx, err := s.LoadIndex(ctx)
	if err != nil {
		return nil, err
	}
	return s.searcher.Search(idx, text), nil
}

// Resolve finds an indexed entry by its 1-based position in the stored index
// or by its path, ignoring case.
func (s *Service) Resolve(ctx context.Context, ref string) (models.IndexEntry, error) {
	idx, err := s.LoadIndex(ctx)
	if err != nil {
		return models.IndexEntry{}, err
	}
	ref = strings.TrimSpace(ref)
	if n, convErr := strconv.Atoi(ref); convErr == nil {
		if n < 1 || n > len(idx.Entries) {
			return models.IndexEntry{}, fmt.Errorf("noteservice: entry %d out of range 1-%d: %w",
				n, len(idx.Entries), apperr.ErrNotFound)
		}
		return idx.Entries[n-1], nil
	}
	id := strings.ToLower(path.Clean(strings.ReplaceAll(ref, "\\", "/")))
	for _, e := range idx.Entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.IndexEntry{}, fmt.Errorf("noteservice: entry %q: %w", ref, apperr.ErrNotFound)
}

// ResolvePath turns a user reference into a note path. A number is looked up
// in the stored index; anything else is taken as a path as given, so notes
// written since the last reindex stay reachable.
func (s *Service) ResolvePath(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if _, err := strconv.Atoi(ref); err != nil {
		return ref, nil
	}
	e, err := s.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	return e.Path, nil
}

// ReadNote returns a note with its parsed header. Only eligible note files
// can be read.
func (s *Service) ReadNote(_ context.Context, rel string) (*NoteDetail, error) {
	data, err := s.readNote(rel)
	if err != nil {
		return nil, err
	}
	return buildNoteDetail(rel, data), nil
}

func (s *Service) readNote(rel string) ([]byte, error) {
	if !storage.IsNote(rel) {
		return nil, fmt.Errorf("noteservice: %s is not a note: %w", rel, apperr.ErrNotFound)
	}
	data, err := s.notes.Read(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("noteservice: %s: %w", rel, apperr.ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// CreateNote writes a new note named after today's date and title into dir,
// with a header and a heading, and returns it.
func (s *Service) CreateNote(ctx context.Context, dir, title string) (*NoteDetail, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("noteservice: title is required: %w", apperr.ErrInvalidInput)
	}
	if strings.ContainsAny(title, `/\`) {
		return nil, fmt.Errorf("noteservice: title may not contain path separators: %w", apperr.ErrInvalidInput)
	}

	today := s.now().Format(dateLayout)
	name := today + "-" + strings.ReplaceAll(title, " ", "-") + ".md"
	rel := path.Join(strings.Trim(strings.ReplaceAll(dir, "\\", "/"), "/"), name)
	if !storage.IsNote(rel) {
		return nil, fmt.Errorf("noteservice: %s is not a valid note location: %w", rel, apperr.ErrInvalidInput)
	}

	exists, err := s.notes.Exists(rel)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("noteservice: %s: %w", rel, apperr.ErrAlreadyExists)
	}

	content := parser.Format(models.Header{
		Title: &title,
		Date:  &today,
		Tags:  []string{},
		Body:  "# " + title + "\n\n",
	})
	if err := s.notes.Write(rel, []byte(content)); err != nil {
		return nil, err
	}
	s.logger.Info("note created", slog.String("path", rel))
	s.notifier.PublishNoteEvent("created", rel)
	s.afterWrite(ctx)
	return buildNoteDetail(rel, []byte(content)), nil
}

// EditMeta applies metadata operations (see ApplyMetaOps) to a note's header
// and rewrites it, keeping the body. A note without a date gets today's.
func (s *Service) EditMeta(ctx context.Context, rel, ops string) (*NoteDetail, error) {
	data, err := s.readNote(rel)
	if err != nil {
		return nil, err
	}

	h := parser.Parse(storage.DecodeText(data))
	ApplyMetaOps(&h, ops)
	if h.Date == nil {
		today := s.now().Format(dateLayout)
		h.Date = &today
	}
	if h.Tags == nil {
		h.Tags = []string{}
	}

	content := parser.Format(h)
	if err := s.notes.Write(rel, []byte(content)); err != nil {
		return nil, err
	}
	s.logger.Info("note metadata updated", slog.String("path", rel))
	s.notifier.PublishNoteEvent("updated", rel)
	s.afterWrite(ctx)
	return buildNoteDetail(rel, []byte(content)), nil
}

// AppendNote adds text to the end of a note on a new line.
func (s *Service) AppendNote(ctx context.Context, rel, text string) (*NoteDetail, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("noteservice: nothing to append: %w", apperr.ErrInvalidInput)
	}
	data, err := s.readNote(rel)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	// Notes are written back as UTF-8 whatever their original encoding.
	content := []byte(storage.DecodeText(data) + "\n" + text)
	if err := s.notes.Write(rel, content); err != nil {
		return nil, err
	}
	s.logger.Info("note appended", slog.String("path", rel))
	s.notifier.PublishNoteEvent("updated", rel)
	s.afterWrite(ctx)
	return buildNoteDetail(rel, content), nil
}

// afterWrite reindexes when enabled. The write itself already succeeded, so
// a failed reindex is only logged.
func (s *Service) afterWrite(ctx context.Context) {
	if !s.autoReindex {
		return
	}
	if _, err := s.Reindex(ctx); err != nil {
		s.logger.Warn("auto reindex failed", slog.String("error", err.Error()))
	}
}

// buildNoteDetail constructs a NoteDetail from raw data without re-reading the file.
func buildNoteDetail(rel string, data []byte) *NoteDetail {
	text := storage.DecodeText(data)
	h := parser.Parse(text)
	title := index.DeriveTitle(rel)
	if h.Title != nil {
		title = *h.Title
	}
	return &NoteDetail{
		Path:     rel,
		Title:    title,
		Date:     h.Date,
		Tags:     nonNilSlice(h.Tags),
		Content:  text,
		Checksum: checksum.Sum([]byte(text)),
	}
}

var rootLocks sync.Map // absolute root -> *sync.Mutex

func rootLock(root string) *sync.Mutex {
	mu, _ := rootLocks.LoadOrStore(root, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
