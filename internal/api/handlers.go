package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/sp00kydogz/CuadernoCLI/internal/noteservice"
	"github.com/sp00kydogz/CuadernoCLI/internal/query"
)

const (
	maxBodyBytes = 1 << 20

	// Manual reindexes: a short burst, then one per interval.
	reindexInterval = time.Second
	reindexBurst    = 2
)

// Handler holds API route handlers.
type Handler struct {
	svc     *noteservice.Service
	reindex *rate.Limiter
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{
		svc:     svc,
		reindex: rate.NewLimiter(rate.Every(reindexInterval), reindexBurst),
	}
}

// notePath extracts the note path from the URL (everything after /api/notes/).
// Supports encoded slashes from OpenAPI clients (e.g. Estudios%2Fnota.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// ListEntries handles GET /api/entries.
//
//	@Summary		List index entries with an optional filter
//	@Tags			index
//	@Produce		json
//	@Param			filter	query		string	false	"tags:<name>, YYYY-MM, or a category or subcategory name"
//	@Success		200		{object}	EntryListResponse
//	@Failure		404		{object}	errResponse	"index not built"
//	@Security		BearerAuth
//	@Router			/entries [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.List(r.Context(), r.URL.Query().Get("filter"))
	if err != nil {
		writeIndexError(w, "list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: entries, Total: len(entries)})
}

// Search handles GET /api/search.
//
//	@Summary		Ranked search over the index
//	@Tags			index
//	@Produce		json
//	@Param			q	query		string	false	"Terms, \"phrases\" and tag:/cat:/sub:/date: qualifiers"
//	@Success		200	{object}	SearchResponse
//	@Failure		404	{object}	errResponse	"index not built"
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	hits, err := h.svc.Search(r.Context(), q)
	if err != nil {
		writeIndexError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   query.ParseQuery(q),
		Results: hits,
		Total:   len(hits),
	})
}

// Reindex handles POST /api/reindex.
//
//	@Summary		Rebuild and save the index
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	ReindexResponse
//	@Failure		429	{object}	errResponse
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reindex [post]
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	if !h.reindex.Allow() {
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, errorBody("reindex rate limit exceeded"))
		return
	}
	idx, err := h.svc.Reindex(r.Context())
	if err != nil {
		writeError(w, "reindex", err)
		return
	}
	writeJSON(w, http.StatusOK, ReindexResponse{
		Entries:     len(idx.Entries),
		Root:        idx.Root,
		GeneratedAt: idx.GeneratedAt,
	})
}

// GetNote handles GET /api/notes/*.
//
//	@Summary		Get a single note by path
//	@Tags			notes
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.svc.ReadNote(r.Context(), path)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a dated note with a header
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Folder and title"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	note, err := h.svc.CreateNote(r.Context(), req.Dir, req.Title)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// EditMeta handles POST /api/meta.
//
//	@Summary		Edit a note header
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EditMetaRequest	true	"Note path and operations"
//	@Success		200		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/meta [post]
func (h *Handler) EditMeta(w http.ResponseWriter, r *http.Request) {
	var req EditMetaRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" || strings.TrimSpace(req.Ops) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and ops are required"))
		return
	}
	note, err := h.svc.EditMeta(r.Context(), req.Path, req.Ops)
	if err != nil {
		writeError(w, "edit meta", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// AppendNote handles POST /api/append.
//
//	@Summary		Append text to a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AppendRequest	true	"Note path and text"
//	@Success		200		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/append [post]
func (h *Handler) AppendNote(w http.ResponseWriter, r *http.Request) {
	var req AppendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.svc.AppendNote(r.Context(), req.Path, req.Text)
	if err != nil {
		writeError(w, "append note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}
