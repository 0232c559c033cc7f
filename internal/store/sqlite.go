package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sp00kydogz/CuadernoCLI/internal/apperr"
	"github.com/sp00kydogz/CuadernoCLI/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS index_meta (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	version      INTEGER NOT NULL,
	generated_at TEXT NOT NULL,
	root         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS entries (
	position    INTEGER PRIMARY KEY,
	id          TEXT NOT NULL,
	path        TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	subcategory TEXT,
	date        TEXT,
	tags        TEXT NOT NULL DEFAULT '[]',
	modified    TEXT NOT NULL,
	hash        TEXT NOT NULL DEFAULT '',
	summary     TEXT
);

CREATE INDEX IF NOT EXISTS idx_entries_id ON entries(id);
`

// SQLite stores the index in a SQLite database file. Entry order is kept in
// the position column; optional fields map to NULL.
type SQLite struct {
	path string
}

// NewSQLite returns a SQLite store backed by the database file at path.
func NewSQLite(path string) *SQLite {
	return &SQLite{path: path}
}

// Path returns the database file location.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) open(ctx context.Context) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", s.path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return conn, nil
}

// Save replaces the stored index within one transaction.
func (s *SQLite) Save(ctx context.Context, idx *models.IndexFile) error {
	conn, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("store: clear entries: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO index_meta (id, version, generated_at, root)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			version      = excluded.version,
			generated_at = excluded.generated_at,
			root         = excluded.root
	`, idx.Version, idx.GeneratedAt.Format(time.RFC3339Nano), idx.Root)
	if err != nil {
		return fmt.Errorf("store: write meta: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (position, id, path, title, category, subcategory, date, tags, modified, hash, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range idx.Entries {
		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("store: encode tags: %w", err)
		}
		_, err = stmt.ExecContext(ctx, i, e.ID, e.Path, e.Title, e.Category,
			nullable(e.Subcategory), nullable(e.Date), string(tagsJSON),
			e.Modified.Format(time.RFC3339Nano), e.Hash, nullable(e.Summary))
		if err != nil {
			return fmt.Errorf("store: insert entry %s: %w", e.Path, err)
		}
	}

	return tx.Commit()
}

// Load reads the stored index. A database file that does not exist is
// reported as not found and is not created.
func (s *SQLite) Load(ctx context.Context) (*models.IndexFile, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("store: load %s: %w", s.path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("store: load %s: %w", s.path, err)
	}

	conn, err := s.open(ctx)
	if err != nil {
		return nil, errors.Join(apperr.ErrMalformedIndex, err)
	}
	defer conn.Close()

	var (
		idx       models.IndexFile
		generated string
	)
	err = conn.QueryRowContext(ctx, `SELECT version, generated_at, root FROM index_meta WHERE id = 1`).
		Scan(&idx.Version, &generated, &idx.Root)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("store: load %s: %w: no index metadata", s.path, apperr.ErrMalformedIndex)
		}
		return nil, fmt.Errorf("store: read meta: %w", err)
	}
	if idx.Version != models.IndexVersion {
		return nil, fmt.Errorf("store: load %s: %w: unsupported version %d",
			s.path, apperr.ErrMalformedIndex, idx.Version)
	}
	if idx.GeneratedAt, err = time.Parse(time.RFC3339Nano, generated); err != nil {
		return nil, fmt.Errorf("store: generated_at: %w", errors.Join(apperr.ErrMalformedIndex, err))
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT id, path, title, category, subcategory, date, tags, modified, hash, summary
		FROM entries ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("store: query entries: %w", err)
	}
	defer rows.Close()

	idx.Entries = []models.IndexEntry{}
	for rows.Next() {
		var (
			e                  models.IndexEntry
			sub, date, summary sql.NullString
			tagsJSON, modified string
		)
		if err := rows.Scan(&e.ID, &e.Path, &e.Title, &e.Category, &sub, &date,
			&tagsJSON, &modified, &e.Hash, &summary); err != nil {
			return nil, fmt.Errorf("store: scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
			return nil, fmt.Errorf("store: tags of %s: %w", e.Path, errors.Join(apperr.ErrMalformedIndex, err))
		}
		if e.Modified, err = time.Parse(time.RFC3339Nano, modified); err != nil {
			return nil, fmt.Errorf("store: modified of %s: %w", e.Path, errors.Join(apperr.ErrMalformedIndex, err))
		}
		e.Subcategory = fromNullable(sub)
		e.Date = fromNullable(date)
		e.Summary = fromNullable(summary)
		idx.Entries = append(idx.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: read entries: %w", err)
	}

	normalize(&idx)
	return &idx, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return models.StringPtr(ns.String)
}
