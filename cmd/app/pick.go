package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/sp00kydogz/CuadernoCLI/internal/models"
	"github.com/sp00kydogz/CuadernoCLI/internal/parser"
)

var errNothingPicked = errors.New("no note selected")

// pickLabel is the line shown for e in the fuzzy finder.
func pickLabel(e models.IndexEntry) string {
	label := e.Title
	if loc := location(e); loc != "" {
		label += "  (" + loc + ")"
	}
	if len(e.Tags) > 0 {
		label += "  #" + strings.Join(e.Tags, " #")
	}
	return label
}

// pickEntry lets the user choose an entry with a fuzzy finder. The preview
// shows the entry's metadata and summary.
func pickEntry(entries []models.IndexEntry) (models.IndexEntry, error) {
	if len(entries) == 0 {
		return models.IndexEntry{}, errNothingPicked
	}
	i, err := fuzzyfinder.Find(entries,
		func(i int) string { return pickLabel(entries[i]) },
		fuzzyfinder.WithHeader("Cuaderno"),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i < 0 {
				return ""
			}
			e := entries[i]
			return fmt.Sprintf("%s\n%s\n%s\n\n%s", e.Title, e.Path, e.DateOrEmpty(), e.SummaryOrEmpty())
		}),
	)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return models.IndexEntry{}, errNothingPicked
	}
	if err != nil {
		return models.IndexEntry{}, err
	}
	return entries[i], nil
}

// renderBody renders the note body as terminal Markdown. Plain .txt notes and
// render failures fall back to the text as stored.
func renderBody(rel, content string) string {
	body := parser.StripHeader(content)
	if !strings.HasSuffix(strings.ToLower(rel), ".md") {
		return body
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return body
	}
	out, err := r.Render(body)
	if err != nil {
		return body
	}
	return out
}
