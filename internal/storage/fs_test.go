package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/sp00kydogz/CuadernoCLI/internal/apperr"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir, WithWorkers(2))
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func scannedPaths(t *testing.T, s *FS) []string {
	t.Helper()
	notes, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	var out []string
	for _, n := range notes {
		out = append(out, n.Path)
	}
	sort.Strings(out)
	return out
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("# Hello\nWorld\n")
	if err := s.Write("note.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("a/b/c.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	ok, err := s.Exists("a/b/c.md")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	ok, _ = s.Exists("a/b/missing.md")
	if ok {
		t.Error("missing file reported as existing")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)
	for _, p := range []string{"../../etc/passwd", "../outside.md", "/etc/shadow"} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("atomic.md", []byte("original"))
	if err := s.Write("atomic.md", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".cuaderno-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	_ = os.WriteFile(f, []byte("x"), 0o644)
	if _, err := NewFS(f); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestScan_Eligibility(t *testing.T) {
	s := tempRoot(t)
	for _, p := range []string{
		"top.md",
		"Estudios/Redes/vlan.md",
		"Estudios/plain.txt",
		"Estudios/UPPER.MD",
		"Estudios/_draft.md",
		"_index.json",
		"notes.json",
		".hidden/secret.md",
		"Estudios/.obsidian/cfg.md",
		".git/HEAD.md",
		"img.png",
	} {
		if err := s.Write(p, []byte("x")); err != nil {
			t.Fatalf("Write %s: %v", p, err)
		}
	}

	got := scannedPaths(t, s)
	want := []string{"Estudios/Redes/vlan.md", "Estudios/UPPER.MD", "Estudios/plain.txt", "top.md"}
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

const utf8BOM = "\xef\xbb\xbf"

// utf16LE encodes s as UTF-16 little endian with a byte-order mark.
func utf16LE(s string) []byte {
	out := []byte{0xFF, 0xFE}
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

func TestScan_ContentAndModTime(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("a/n.md", []byte(utf8BOM+"hola"))
	mod := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(s.root, "a", "n.md"), mod, mod); err != nil {
		t.Fatal(err)
	}

	notes, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("len = %d, want 1", len(notes))
	}
	n := notes[0]
	if n.Content != "hola" {
		t.Errorf("content = %q, BOM should be dropped", n.Content)
	}
	if !n.Modified.Equal(mod) || n.Modified.Location() != time.UTC {
		t.Errorf("modified = %v, want %v UTC", n.Modified, mod)
	}
}

func TestScan_UTF16Note(t *testing.T) {
	s := tempRoot(t)
	text := "---\ntitle: Hola\ntags: [año]\n---\ncuerpo\n"
	if err := s.Write("u16.md", utf16LE(text)); err != nil {
		t.Fatal(err)
	}

	notes, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("len = %d, want 1", len(notes))
	}
	if notes[0].Content != text {
		t.Errorf("content = %q, want %q", notes[0].Content, text)
	}
}

func TestDecodeText(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte("hola"), "hola"},
		{"utf8 bom", []byte(utf8BOM + "hola"), "hola"},
		{"utf16le", utf16LE("título"), "título"},
		{"utf16be", []byte{0xFE, 0xFF, 0x00, 'o', 0x00, 'k'}, "ok"},
		{"invalid", []byte{'a', 0xff, 'b'}, "a\uFFFDb"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := DecodeText(c.in); got != c.want {
				t.Errorf("DecodeText = %q, want %q", got, c.want)
			}
		})
	}
}

func TestScan_UnreadableNoteAborts(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("ok.md", []byte("fine"))
	if err := os.Symlink(filepath.Join(s.root, "nowhere"), filepath.Join(s.root, "broken.md")); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}

	_, err := s.Scan(context.Background())
	if err == nil {
		t.Fatal("expected scan failure")
	}
	if !errors.Is(err, apperr.ErrScanFailure) {
		t.Errorf("error %v should wrap ErrScanFailure", err)
	}
	var se *apperr.ScanError
	if !errors.As(err, &se) || se.Path != "broken.md" {
		t.Errorf("expected ScanError for broken.md, got %v", err)
	}
}

func TestIsNote(t *testing.T) {
	cases := map[string]bool{
		"a.md":         true,
		"a/b/c.txt":    true,
		"a/_b.md":      false,
		"_a/b.md":      true,
		".git/x.md":    false,
		"a/.x/b.md":    false,
		"a/b.markdown": false,
		"a/b.Txt":      true,
	}
	for rel, want := range cases {
		if got := IsNote(rel); got != want {
			t.Errorf("IsNote(%q) = %v, want %v", rel, got, want)
		}
	}
}
