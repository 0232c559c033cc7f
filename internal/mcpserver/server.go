// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Cuaderno tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sp00kydogz/CuadernoCLI/internal/apperr"
	"github.com/sp00kydogz/CuadernoCLI/internal/noteservice"
)

const (
	contractURI = "cuaderno://note-format"
	maxResults  = 20
)

// Server wraps the MCP server with Cuaderno tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all Cuaderno tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Cuaderno",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Ranked search over the note index. Free terms must all match; "+
			"\"quoted phrases\" stay together; tag:, cat:, sub: and date: filter."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query, e.g. vlan tag:Cisco")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List indexed notes, newest first, with an optional filter."),
		mcp.WithString("filter", mcp.Description("tags:<name>, YYYY-MM, or a category or subcategory name")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("reindex",
		mcp.WithDescription("Rescan the notebook and save a fresh index."),
	), s.reindex)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note by path or by its number in the index listing."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path (e.g. Estudios/nota.md) or 1-based index number")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a dated note with a header. Read the contract first via "+
			"the get_note_contract tool or the "+contractURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title; also used for the file name")),
		mcp.WithString("dir", mcp.Description("Folder under the root (empty for the root)")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("edit_meta",
		mcp.WithDescription("Edit a note header with operations like "+
			"title:\"Nuevo\" date:2025-09-10 tags:a,b +tag:x -tag:y."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path or 1-based index number")),
		mcp.WithString("ops", mcp.Required(), mcp.Description("Space-separated metadata operations")),
	), s.editMeta)

	s.mcp.AddTool(mcp.NewTool("append_note",
		mcp.WithDescription("Append text to the end of a note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path or 1-based index number")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to append")),
	), s.appendNote)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the Cuaderno note format contract. "+
			"Call this before creating or editing notes."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Note Format Contract",
			mcp.WithResourceDescription("Note header format and naming rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// toolError turns a service error into a message the model can act on.
func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrMalformedIndex) {
		return mcp.NewToolResultError("index is malformed; call reindex to rebuild it")
	}
	return mcp.NewToolResultError(err.Error())
}

// indexError is toolError for operations that only read the stored index,
// where a missing file means it was never built.
func indexError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("index not built; call reindex first")
	}
	return toolError(err)
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.Search(ctx, query)
	if err != nil {
		return indexError(err), nil
	}
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return jsonResult(hits), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.svc.List(ctx, req.GetString("filter", ""))
	if err != nil {
		return indexError(err), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("no notes found"), nil
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s\t%s\n", e.Path, e.Title)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) reindex(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := s.svc.Reindex(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("indexed %d notes", len(idx.Entries))), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := s.svc.ResolvePath(ctx, ref)
	if err != nil {
		return toolError(err), nil
	}
	note, err := s.svc.ReadNote(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", ref)), nil
	}
	return mcp.NewToolResultText(note.Content), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.CreateNote(ctx, req.GetString("dir", ""), title)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError("note already exists: " + title), nil
		}
		return toolError(err), nil
	}
	return mcp.NewToolResultText("created: " + note.Path), nil
}

func (s *Server) editMeta(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ops, err := req.RequireString("ops")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := s.svc.ResolvePath(ctx, ref)
	if err != nil {
		return toolError(err), nil
	}
	note, err := s.svc.EditMeta(ctx, path, ops)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(map[string]any{
		"path":  note.Path,
		"title": note.Title,
		"date":  note.Date,
		"tags":  note.Tags,
	}), nil
}

func (s *Server) appendNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := s.svc.ResolvePath(ctx, ref)
	if err != nil {
		return toolError(err), nil
	}
	note, err := s.svc.AppendNote(ctx, path, text)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("appended: " + note.Path), nil
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
