package parser

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sp00kydogz/CuadernoCLI/internal/models"
)

func TestParse_HeaderAndBody(t *testing.T) {
	input := "---\ntitle: Resumen VLAN\ndate: 2025-09-10\ntags: [Cisco, VLAN, Tarea]\n---\n# VLAN\nTexto de prueba\n"
	h := Parse(input)
	if !h.HasBlock {
		t.Fatal("expected header block")
	}
	if h.Title == nil || *h.Title != "Resumen VLAN" {
		t.Errorf("title = %v, want Resumen VLAN", h.Title)
	}
	if h.Date == nil || *h.Date != "2025-09-10" {
		t.Errorf("date = %v, want 2025-09-10", h.Date)
	}
	if !reflect.DeepEqual(h.Tags, []string{"Cisco", "VLAN", "Tarea"}) {
		t.Errorf("tags = %v", h.Tags)
	}
	if h.Body != "# VLAN\nTexto de prueba\n" {
		t.Errorf("body = %q", h.Body)
	}
}

func TestParse_NoHeader(t *testing.T) {
	input := "# Just a heading\nSome text.\n"
	h := Parse(input)
	if h.HasBlock {
		t.Error("expected no header block")
	}
	if h.Title != nil || h.Date != nil || h.Tags != nil {
		t.Errorf("expected empty metadata, got %+v", h)
	}
	if h.Body != input {
		t.Errorf("body = %q, want whole input", h.Body)
	}
}

func TestParse_HeaderMustStartText(t *testing.T) {
	input := "\n---\ntitle: Late\n---\nbody"
	h := Parse(input)
	if h.HasBlock || h.Title != nil {
		t.Errorf("leading blank line should disable header, got %+v", h)
	}
}

func TestParse_UnclosedHeaderIsBody(t *testing.T) {
	input := "---\ntitle: Open\nno closing line\n"
	h := Parse(input)
	if h.HasBlock {
		t.Error("unclosed block must not be treated as header")
	}
	if h.Body != input {
		t.Errorf("body = %q", h.Body)
	}
}

func TestParse_CRLF(t *testing.T) {
	h := Parse("---\r\ntitle: \"Quoted\"\r\ntags: a, b\r\n---\r\nbody\r\n")
	if h.Title == nil || *h.Title != "Quoted" {
		t.Errorf("title = %v", h.Title)
	}
	if !reflect.DeepEqual(h.Tags, []string{"a", "b"}) {
		t.Errorf("tags = %v", h.Tags)
	}
	if h.Body != "body\r\n" {
		t.Errorf("body = %q", h.Body)
	}
}

func TestParse_MalformedLinesIgnored(t *testing.T) {
	input := "---\n: nothing\ngarbage line\nauthor: someone\ntitle: Kept\n---\n"
	h := Parse(input)
	if !h.HasBlock {
		t.Fatal("expected header block")
	}
	if h.Title == nil || *h.Title != "Kept" {
		t.Errorf("title = %v", h.Title)
	}
	if h.Date != nil || h.Tags != nil {
		t.Errorf("unexpected metadata %+v", h)
	}
	if h.Body != "" {
		t.Errorf("body = %q", h.Body)
	}
}

func TestParse_ClosingDelimiterAtEOF(t *testing.T) {
	h := Parse("---\ndate: 2024-01-02\n---")
	if !h.HasBlock || h.Date == nil || *h.Date != "2024-01-02" {
		t.Errorf("got %+v", h)
	}
}

func TestParse_EmptyBlock(t *testing.T) {
	h := Parse("---\n---\ncuerpo\n")
	if !h.HasBlock || h.Title != nil || h.Date != nil || h.Tags != nil {
		t.Errorf("got %+v", h)
	}
	if h.Body != "cuerpo\n" {
		t.Errorf("body = %q", h.Body)
	}
}

func TestParseTags(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{`[a, b, c]`, []string{"a", "b", "c"}},
		{`["Redes", 'Cisco']`, []string{"Redes", "Cisco"}},
		{`x, y`, []string{"x", "y"}},
		{`[dup, dup]`, []string{"dup", "dup"}},
		{`[]`, []string{}},
		{``, []string{}},
		{`[a, , b]`, []string{"a", "b"}},
	}
	for _, c := range cases {
		got := parseTags(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("parseTags(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	h := models.Header{
		Title: models.StringPtr("Nuevo"),
		Date:  models.StringPtr("2025-10-01"),
		Tags:  []string{"A", "B"},
		Body:  "\n\nCuerpo\n",
	}
	out := Format(h)
	if !strings.HasPrefix(out, "---\ntitle: Nuevo\ndate: 2025-10-01\ntags: [A, B]\n---\n\nCuerpo\n") {
		t.Errorf("format = %q", out)
	}

	back := Parse(out)
	if *back.Title != "Nuevo" || *back.Date != "2025-10-01" || !reflect.DeepEqual(back.Tags, h.Tags) {
		t.Errorf("reparse = %+v", back)
	}
}

func TestStripHeader(t *testing.T) {
	if got := StripHeader("---\ntitle: x\n---\nrest"); got != "rest" {
		t.Errorf("StripHeader = %q", got)
	}
	if got := StripHeader("plain"); got != "plain" {
		t.Errorf("StripHeader = %q", got)
	}
}
