package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp00kydogz/CuadernoCLI/internal/apperr"
	"github.com/sp00kydogz/CuadernoCLI/internal/models"
)

func sampleIndex() *models.IndexFile {
	mod := time.Date(2025, 9, 10, 12, 30, 0, 123456789, time.UTC)
	return &models.IndexFile{
		Version:     models.IndexVersion,
		GeneratedAt: time.Date(2025, 9, 11, 8, 0, 0, 0, time.UTC),
		Root:        "Cuaderno",
		Entries: []models.IndexEntry{
			{
				ID:          "estudios/redes/2025-09-10-resumen-vlan.md",
				Path:        "Estudios/Redes/2025-09-10-Resumen-VLAN.md",
				Title:       "Resumen VLAN",
				Category:    "Estudios",
				Subcategory: models.StringPtr("Redes"),
				Date:        models.StringPtr("2025-09-10"),
				Tags:        []string{"Cisco", "VLAN", "Tarea"},
				Modified:    mod,
				Hash:        "sha256:abc",
				Summary:     models.StringPtr("Resumen VLAN <b> & co"),
			},
			{
				ID:          "nota.md",
				Path:        "nota.md",
				Title:       "Nota",
				Subcategory: models.StringPtr(""),
				Tags:        []string{"z", "a", "z"},
				Modified:    mod.Add(-time.Hour),
				Hash:        "sha256:def",
			},
		},
	}
}

func backends(t *testing.T) map[string]Store {
	dir := t.TempDir()
	return map[string]Store{
		"json":   NewJSON(filepath.Join(dir, "_index.json")),
		"sqlite": NewSQLite(filepath.Join(dir, "_index.db")),
	}
}

func TestRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := sampleIndex()
			require.NoError(t, s.Save(ctx, in))

			out, err := s.Load(ctx)
			require.NoError(t, err)

			assert.Equal(t, in.Version, out.Version)
			assert.True(t, in.GeneratedAt.Equal(out.GeneratedAt))
			assert.Equal(t, in.Root, out.Root)
			require.Len(t, out.Entries, len(in.Entries))
			for i := range in.Entries {
				want, got := in.Entries[i], out.Entries[i]
				assert.Equal(t, want.ID, got.ID)
				assert.Equal(t, want.Path, got.Path)
				assert.Equal(t, want.Hash, got.Hash)
				assert.Equal(t, want.Title, got.Title)
				assert.Equal(t, want.Category, got.Category)
				assert.Equal(t, want.Subcategory, got.Subcategory)
				assert.Equal(t, want.Date, got.Date)
				assert.Equal(t, want.Summary, got.Summary)
				assert.Equal(t, want.Tags, got.Tags)
				assert.True(t, want.Modified.Equal(got.Modified), "modified %v != %v", want.Modified, got.Modified)
			}

			// Absent and empty stay distinct.
			assert.Nil(t, out.Entries[1].Date)
			assert.Nil(t, out.Entries[1].Summary)
			require.NotNil(t, out.Entries[1].Subcategory)
			assert.Equal(t, "", *out.Entries[1].Subcategory)
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, sampleIndex()))

			smaller := sampleIndex()
			smaller.Entries = smaller.Entries[1:]
			smaller.Root = "Otro"
			require.NoError(t, s.Save(ctx, smaller))

			out, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Otro", out.Root)
			require.Len(t, out.Entries, 1)
			assert.Equal(t, "nota.md", out.Entries[0].ID)
		})
	}
}

func TestEmptyIndex(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			idx := sampleIndex()
			idx.Entries = []models.IndexEntry{}
			require.NoError(t, s.Save(ctx, idx))

			out, err := s.Load(ctx)
			require.NoError(t, err)
			assert.NotNil(t, out.Entries)
			assert.Empty(t, out.Entries)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load(context.Background())
			require.ErrorIs(t, err, apperr.ErrNotFound)
			_, statErr := os.Stat(s.Path())
			assert.True(t, os.IsNotExist(statErr), "load must not create the file")
		})
	}
}

func TestJSONLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "_index.json")
	require.NoError(t, os.WriteFile(path, []byte("{\"version\": 1, \"entries\": ["), 0o644))

	_, err := NewJSON(path).Load(context.Background())
	require.ErrorIs(t, err, apperr.ErrMalformedIndex)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)
}

func TestJSONLoadUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "_index.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "entries": []}`), 0o644))

	_, err := NewJSON(path).Load(context.Background())
	require.ErrorIs(t, err, apperr.ErrMalformedIndex)
}

func TestJSONIsReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "_index.json")
	require.NoError(t, NewJSON(path).Save(context.Background(), sampleIndex()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "\n  \"entries\": [")
	assert.Contains(t, text, `"generated_at": "2025-09-11T08:00:00Z"`)
	assert.Contains(t, text, "<b> & co", "HTML characters are written as-is")
	assert.False(t, strings.Contains(text, `"date": null`), "absent fields are omitted")
}

func TestSQLiteLoadWithoutMeta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "_index.sqlite")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := NewSQLite(path).Load(context.Background())
	require.ErrorIs(t, err, apperr.ErrMalformedIndex)
}

func TestForPath(t *testing.T) {
	assert.IsType(t, &SQLite{}, ForPath("/n/_index.db"))
	assert.IsType(t, &SQLite{}, ForPath("/n/_index.SQLITE"))
	assert.IsType(t, &JSON{}, ForPath("/n/_index.json"))
	assert.IsType(t, &JSON{}, ForPath("/n/index"))
	assert.Equal(t, filepath.Join("/n", "_index.json"), DefaultPath("/n"))
}

func TestPackageSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "_index.json")
	ctx := context.Background()
	require.NoError(t, Save(ctx, sampleIndex(), path))
	out, err := Load(ctx, path)
	require.NoError(t, err)
	assert.Len(t, out.Entries, 2)
}
