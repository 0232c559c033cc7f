package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sp00kydogz/CuadernoCLI/internal/models"
	"github.com/sp00kydogz/CuadernoCLI/internal/query"
)

func sampleIndex(now time.Time) *models.IndexFile {
	return &models.IndexFile{
		Version: models.IndexVersion,
		Root:    "Cuaderno",
		Entries: []models.IndexEntry{
			{
				Path:        "Estudios/Redes/vlan.md",
				Title:       "Resumen VLAN",
				Category:    "Estudios",
				Subcategory: models.StringPtr("Redes"),
				Tags:        []string{"Cisco", "VLAN"},
				Modified:    now.Add(-2 * time.Hour),
				Summary:     models.StringPtr("Las VLAN separan dominios"),
			},
			{
				Path:     "suelta.md",
				Title:    "Suelta",
				Tags:     []string{},
				Modified: now.Add(-48 * time.Hour),
			},
		},
	}
}

func TestPositions(t *testing.T) {
	pos := positions(sampleIndex(time.Now()))
	if pos["Estudios/Redes/vlan.md"] != 1 || pos["suelta.md"] != 2 {
		t.Errorf("positions = %v", pos)
	}
}

func TestPrintEntries(t *testing.T) {
	now := time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC)
	idx := sampleIndex(now)

	var buf bytes.Buffer
	printEntries(&buf, idx.Entries[1:], positions(idx), now)
	out := buf.String()

	for _, want := range []string{"2", "Suelta", "2 days ago", "1 notes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printEntries(&buf, nil, nil, now)
	if !strings.Contains(buf.String(), "no notes found") {
		t.Errorf("empty output = %q", buf.String())
	}
}

func TestPrintHits(t *testing.T) {
	now := time.Now()
	idx := sampleIndex(now)

	var buf bytes.Buffer
	printHits(&buf, []query.Hit{{Entry: idx.Entries[0], Score: 91}}, positions(idx))
	out := buf.String()

	for _, want := range []string{"Resumen VLAN", "score 91", "#Cisco #VLAN", "Las VLAN separan dominios"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLocation(t *testing.T) {
	idx := sampleIndex(time.Now())
	if got := location(idx.Entries[0]); got != "Estudios/Redes" {
		t.Errorf("location = %q", got)
	}
	if got := location(idx.Entries[1]); got != "" {
		t.Errorf("root note location = %q", got)
	}
}

func TestPickLabel(t *testing.T) {
	idx := sampleIndex(time.Now())
	if got := pickLabel(idx.Entries[0]); got != "Resumen VLAN  (Estudios/Redes)  #Cisco #VLAN" {
		t.Errorf("label = %q", got)
	}
	if got := pickLabel(idx.Entries[1]); got != "Suelta" {
		t.Errorf("label = %q", got)
	}
}

func TestPickEntry_Empty(t *testing.T) {
	if _, err := pickEntry(nil); err != errNothingPicked {
		t.Errorf("err = %v, want errNothingPicked", err)
	}
}

func TestRenderBody_PlainText(t *testing.T) {
	content := "---\ntitle: Lista\n---\n\n* uno\n* dos\n"
	if got := renderBody("lista.txt", content); got != "\n* uno\n* dos\n" {
		t.Errorf("body = %q", got)
	}
}

func TestRenderBody_Markdown(t *testing.T) {
	got := renderBody("nota.md", "---\ntitle: Nota\n---\n\n# Hola\n\nmundo\n")
	if !strings.Contains(got, "Hola") || !strings.Contains(got, "mundo") || strings.Contains(got, "title:") {
		t.Errorf("rendered = %q", got)
	}
}
