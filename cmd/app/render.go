package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sp00kydogz/CuadernoCLI/internal/models"
	"github.com/sp00kydogz/CuadernoCLI/internal/noteservice"
	"github.com/sp00kydogz/CuadernoCLI/internal/query"
)

var (
	accent = lipgloss.Color("#10B981")
	muted  = lipgloss.Color("#6B7280")
	bright = lipgloss.Color("#7C3AED")

	numberStyle = lipgloss.NewStyle().
			Foreground(muted).
			Width(5).
			Align(lipgloss.Right)

	titleStyle = lipgloss.NewStyle().
			Foreground(bright).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(muted)

	tagStyle = lipgloss.NewStyle().
			Foreground(accent)

	successStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	headerBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(bright).
			Padding(0, 1)
)

// positions maps each path to its 1-based number in the stored index, the
// number view, meta and append accept.
func positions(idx *models.IndexFile) map[string]int {
	pos := make(map[string]int, len(idx.Entries))
	for i, e := range idx.Entries {
		pos[e.Path] = i + 1
	}
	return pos
}

func location(e models.IndexEntry) string {
	if sub := e.SubcategoryOrEmpty(); sub != "" {
		return e.Category + "/" + sub
	}
	return e.Category
}

func tagList(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return tagStyle.Render("#" + strings.Join(tags, " #"))
}

func printEntries(w io.Writer, entries []models.IndexEntry, pos map[string]int, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no notes found"))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s  %s %s\n",
			numberStyle.Render(fmt.Sprint(pos[e.Path])),
			titleStyle.Render(e.Title),
			dimStyle.Render(location(e)+" · "+humanize.RelTime(e.Modified, now, "ago", "from now")),
			tagList(e.Tags))
	}
	fmt.Fprintln(w, dimStyle.Render(humanize.Comma(int64(len(entries)))+" notes"))
}

func printHits(w io.Writer, hits []query.Hit, pos map[string]int) {
	if len(hits) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no matches"))
		return
	}
	for _, h := range hits {
		fmt.Fprintf(w, "%s  %s  %s %s\n",
			numberStyle.Render(fmt.Sprint(pos[h.Entry.Path])),
			titleStyle.Render(h.Entry.Title),
			dimStyle.Render(fmt.Sprintf("%s · score %d", h.Entry.Path, h.Score)),
			tagList(h.Entry.Tags))
		if s := h.Entry.SummaryOrEmpty(); s != "" {
			fmt.Fprintf(w, "%s  %s\n", numberStyle.Render(""), dimStyle.Render(s))
		}
	}
}

func printReindex(w io.Writer, idx *models.IndexFile, path string) {
	fmt.Fprintf(w, "%s %s notes in %s\n",
		successStyle.Render("indexed"),
		humanize.Comma(int64(len(idx.Entries))),
		dimStyle.Render(path))
}

func printHeader(w io.Writer, n *noteservice.NoteDetail) {
	lines := []string{titleStyle.Render(n.Title), dimStyle.Render(n.Path)}
	if n.Date != nil {
		lines = append(lines, dimStyle.Render(*n.Date))
	}
	if t := tagList(n.Tags); t != "" {
		lines = append(lines, t)
	}
	fmt.Fprintln(w, headerBox.Render(strings.Join(lines, "\n")))
}

// printNote shows the header box followed by the rendered body.
func printNote(w io.Writer, n *noteservice.NoteDetail) {
	printHeader(w, n)
	body := renderBody(n.Path, n.Content)
	fmt.Fprint(w, body)
	if !strings.HasSuffix(body, "\n") {
		fmt.Fprintln(w)
	}
}

func printDone(w io.Writer, verb, path string) {
	fmt.Fprintf(w, "%s %s\n", successStyle.Render(verb), path)
}
