package api

import (
	"time"

	"github.com/sp00kydogz/CuadernoCLI/internal/models"
	"github.com/sp00kydogz/CuadernoCLI/internal/noteservice"
	"github.com/sp00kydogz/CuadernoCLI/internal/query"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Dir   string `json:"dir" example:"Estudios/Redes"`
	Title string `json:"title" example:"Resumen VLAN" validate:"required"`
}

// EditMetaRequest is the request body for editing a note header.
type EditMetaRequest struct {
	Path string `json:"path" example:"Estudios/Redes/2025-09-10-Resumen-VLAN.md" validate:"required"`
	Ops  string `json:"ops" example:"title:\"VLAN\" +tag:Cisco" validate:"required"`
}

// AppendRequest is the request body for appending text to a note.
type AppendRequest struct {
	Path string `json:"path" example:"Diario/hoy.md" validate:"required"`
	Text string `json:"text" example:"Otra línea" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// EntryListResponse wraps a filtered listing.
type EntryListResponse struct {
	Entries []models.IndexEntry `json:"entries" validate:"required"`
	Total   int                 `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps ranked search results.
type SearchResponse struct {
	Query   query.Query `json:"query" validate:"required"`
	Results []query.Hit `json:"results" validate:"required"`
	Total   int         `json:"total" example:"3" validate:"required"`
}

// ReindexResponse summarizes a rebuilt and saved index.
type ReindexResponse struct {
	Entries     int       `json:"entries" example:"42" validate:"required"`
	Root        string    `json:"root" example:"Cuaderno" validate:"required"`
	GeneratedAt time.Time `json:"generated_at" validate:"required"`
}
