package mcpserver

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sp00kydogz/CuadernoCLI/internal/noteservice"
	"github.com/sp00kydogz/CuadernoCLI/internal/store"
	"github.com/sp00kydogz/CuadernoCLI/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	root, fs := testutil.TestRoot(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	now := time.Date(2025, 9, 20, 9, 0, 0, 0, time.UTC)
	svc := noteservice.NewService(fs, store.NewJSON(store.DefaultPath(root)),
		noteservice.WithLogger(logger),
		noteservice.WithClock(func() time.Time { return now }))

	return New(svc, "test"), root
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handlers are
	// invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "reindex":
		result, err = srv.reindex(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "edit_meta":
		result, err = srv.editMeta(ctx, req)
	case "append_note":
		result, err = srv.appendNote(ctx, req)
	case "get_note_contract":
		result, err = srv.getNoteContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadNote(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]any{
		"title": "Hola mundo",
		"dir":   "Estudios",
	})
	text := resultText(r)
	if text != "created: Estudios/2025-09-20-Hola-mundo.md" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_note", map[string]any{
		"path": "Estudios/2025-09-20-Hola-mundo.md",
	})
	text = resultText(r)
	if !strings.HasPrefix(text, "---\ntitle: Hola mundo\ndate: 2025-09-20\n") {
		t.Errorf("read result = %q", text)
	}

	r = callTool(t, srv, "create_note", map[string]any{"title": "Hola mundo", "dir": "Estudios"})
	if !r.IsError {
		t.Error("expected error for duplicate note")
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]any{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestIndexTools(t *testing.T) {
	srv, root := testServer(t)
	testutil.WriteNote(t, root, testutil.VLANPath, testutil.VLANNote, time.Now().Add(-time.Hour))
	testutil.WriteNote(t, root, "otra.md", "nada que ver", time.Now().Add(-2*time.Hour))

	r := callTool(t, srv, "list_notes", map[string]any{})
	if !r.IsError || !strings.Contains(resultText(r), "index not built") {
		t.Errorf("list before reindex = %q", resultText(r))
	}

	r = callTool(t, srv, "reindex", map[string]any{})
	if text := resultText(r); text != "indexed 2 notes" {
		t.Errorf("reindex = %q", text)
	}

	r = callTool(t, srv, "list_notes", map[string]any{"filter": "tags:cisco"})
	if text := resultText(r); text != testutil.VLANPath+"\tResumen VLAN\n" {
		t.Errorf("list = %q", text)
	}

	r = callTool(t, srv, "list_notes", map[string]any{"filter": "redes"})
	if text := resultText(r); text != testutil.VLANPath+"\tResumen VLAN\n" {
		t.Errorf("list by subcategory = %q", text)
	}
	r = callTool(t, srv, "list_notes", map[string]any{"filter": "Estudios/Redes"})
	if text := resultText(r); text != "no notes found" {
		t.Errorf("list by path prefix = %q", text)
	}

	r = callTool(t, srv, "search_notes", map[string]any{"query": "vlan"})
	text := resultText(r)
	if r.IsError || !strings.Contains(text, testutil.VLANPath) || strings.Contains(text, "otra.md") {
		t.Errorf("search = %q", text)
	}

	// Number 1 is the most recently modified note.
	r = callTool(t, srv, "read_note", map[string]any{"path": "1"})
	if !strings.Contains(resultText(r), "Las **VLAN**") {
		t.Errorf("read by number = %q", resultText(r))
	}
	r = callTool(t, srv, "read_note", map[string]any{"path": "9"})
	if !r.IsError {
		t.Error("expected error for out of range number")
	}
}

func TestEditMetaAndAppend(t *testing.T) {
	srv, root := testServer(t)
	testutil.WriteNote(t, root, "diario.md", "hoy\n", time.Time{})

	r := callTool(t, srv, "edit_meta", map[string]any{
		"path": "diario.md",
		"ops":  `title:"Mi diario" +tag:personal`,
	})
	text := resultText(r)
	if r.IsError || !strings.Contains(text, `"title": "Mi diario"`) || !strings.Contains(text, `"personal"`) {
		t.Errorf("edit_meta = %q", text)
	}

	r = callTool(t, srv, "append_note", map[string]any{"path": "diario.md", "text": "mañana"})
	if text := resultText(r); text != "appended: diario.md" {
		t.Errorf("append = %q", text)
	}

	data, err := os.ReadFile(root + "/diario.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "hoy\n\nmañana\n") {
		t.Errorf("file = %q", data)
	}

	r = callTool(t, srv, "edit_meta", map[string]any{"path": "falta.md", "ops": "+tag:x"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestGetNoteContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_note_contract", map[string]any{})
	if !strings.Contains(resultText(r), "tags: [Cisco, VLAN, Tarea]") {
		t.Error("contract does not show the header format")
	}
	if !strings.Contains(resultText(r), "Files whose name starts with `_`") {
		t.Error("contract does not limit the underscore rule to files")
	}
}
