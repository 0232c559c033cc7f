// Package models defines the domain types for Cuaderno.
package models

import "time"

// IndexVersion is the schema version written into every IndexFile.
const IndexVersion = 1

// IndexFile is the persisted, derived index over a note root.
type IndexFile struct {
	Version     int          `json:"version"`
	GeneratedAt time.Time    `json:"generated_at"`
	Root        string       `json:"root"`
	Entries     []IndexEntry `json:"entries"`
}

// IndexEntry is the metadata record derived from one note.
//
// Subcategory, Date and Summary are pointers so an absent value survives a
// save/load cycle distinctly from an empty string.
type IndexEntry struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Subcategory *string   `json:"subcategory,omitempty"`
	Date        *string   `json:"date,omitempty"`
	Tags        []string  `json:"tags"`
	Modified    time.Time `json:"modified"`
	Hash        string    `json:"hash"`
	Summary     *string   `json:"summary,omitempty"`
}

// SubcategoryOrEmpty returns the subcategory, or "" when absent.
func (e IndexEntry) SubcategoryOrEmpty() string {
	return deref(e.Subcategory)
}

// DateOrEmpty returns the date string, or "" when absent.
func (e IndexEntry) DateOrEmpty() string {
	return deref(e.Date)
}

// SummaryOrEmpty returns the summary, or "" when absent.
func (e IndexEntry) SummaryOrEmpty() string {
	return deref(e.Summary)
}

// RawNote is a note file as discovered by the scanner, before parsing.
type RawNote struct {
	Path     string // relative to the note root, '/'-separated
	Content  string
	Modified time.Time // UTC
}

// Header is the metadata block extracted from a note. It only lives for the
// duration of a rebuild or an edit.
type Header struct {
	Title    *string
	Date     *string
	Tags     []string // nil when the block has no tags line
	Body     string
	HasBlock bool
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
