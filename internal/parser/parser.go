// Package parser extracts the metadata header (title, date, tags) from note
// text and writes it back.
//
// The header is a block of "key: value" lines between two "---" lines at the
// very start of the note. Parsing is a tolerant line scan: unknown keys and
// malformed lines are skipped, and Parse never fails.
package parser

import (
	"strings"

	"github.com/sp00kydogz/CuadernoCLI/internal/models"
)

const delim = "---"

// Parse splits text into its header fields and body. Without a header block
// the whole text is body and every field is absent.
func Parse(text string) models.Header {
	lines, body, ok := splitHeader(text)
	if !ok {
		return models.Header{Body: text}
	}

	h := parseBlock(lines)
	h.Body = body
	h.HasBlock = true
	return h
}

// StripHeader returns text without its header block, if any.
func StripHeader(text string) string {
	if _, body, ok := splitHeader(text); ok {
		return body
	}
	return text
}

// splitHeader returns the lines between the opening and closing delimiters
// and whatever follows the closing line. The opening delimiter must be the
// first line of text.
func splitHeader(text string) ([]string, string, bool) {
	first, rest, more := cutLine(text)
	if first != delim || !more {
		return nil, text, false
	}

	var lines []string
	for {
		line, next, more := cutLine(rest)
		if line == delim {
			return lines, next, true
		}
		if !more {
			return nil, text, false
		}
		lines = append(lines, line)
		rest = next
	}
}

// cutLine returns the first line of s without its "\n" or "\r\n" terminator,
// the remainder, and whether a terminator was found.
func cutLine(s string) (string, string, bool) {
	i := strings.IndexByte(s, '\n')
	if i < 0 {
		return strings.TrimSuffix(s, "\r"), "", false
	}
	return strings.TrimSuffix(s[:i], "\r"), s[i+1:], true
}

func parseBlock(lines []string) models.Header {
	var h models.Header
	for _, raw := range lines {
		key, value, found := strings.Cut(strings.TrimSpace(raw), ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch key {
		case "title":
			if t := strings.Trim(value, `"`); t != "" {
				h.Title = &t
			}
		case "date":
			if value != "" {
				h.Date = &value
			}
		case "tags":
			h.Tags = parseTags(value)
		}
	}
	return h
}

// parseTags accepts "[a, "b", c]" or a bare "a, b, c". Empty items are
// dropped; duplicates and case are kept as written.
func parseTags(value string) []string {
	bracketed := strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]")
	if bracketed {
		value = value[1 : len(value)-1]
	}

	tags := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if bracketed {
			item = strings.TrimSpace(strings.Trim(item, `"'`))
		}
		if item == "" {
			continue
		}
		tags = append(tags, item)
	}
	return tags
}

// Format renders h as a note: header block, one blank line, then the body
// with its leading line breaks removed.
func Format(h models.Header) string {
	var sb strings.Builder
	sb.WriteString(delim + "\n")

	sb.WriteString("title:")
	if h.Title != nil && *h.Title != "" {
		sb.WriteString(" " + *h.Title)
	}
	sb.WriteString("\n")

	if h.Date != nil {
		sb.WriteString("date: " + *h.Date + "\n")
	}

	sb.WriteString("tags: [" + strings.Join(h.Tags, ", ") + "]\n")
	sb.WriteString(delim + "\n\n")
	sb.WriteString(strings.TrimLeft(h.Body, "\r\n"))
	return sb.String()
}
