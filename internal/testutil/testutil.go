// Package testutil provides shared test helpers for setting up note roots.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sp00kydogz/CuadernoCLI/internal/storage"
)

// TestRoot creates a temporary note root with a storage provider.
func TestRoot(t *testing.T) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	fs, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, fs
}

// WriteNote writes content to rel under root and sets its modification time.
// A zero mod leaves the current time.
func WriteNote(t *testing.T, root, rel, content string, mod time.Time) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if mod.IsZero() {
		return
	}
	if err := os.Chtimes(abs, mod, mod); err != nil {
		t.Fatal(err)
	}
}

// VLANNote is the header and body of a typical dated study note.
const VLANNote = `---
title: Resumen VLAN
date: 2025-09-10
tags: [Cisco, VLAN, Tarea]
---

# Resumen VLAN

Las **VLAN** separan dominios de broadcast en un mismo switch.
`

// VLANPath is where VLANNote lives in fixture roots.
const VLANPath = "Estudios/Redes/2025-09-10-Resumen-VLAN.md"
