// Package query evaluates list filters and ranked searches against a loaded
// index. Every function here is read-only over the index it is given.
package query

import (
	"strings"
	"unicode/utf8"

	"github.com/sp00kydogz/CuadernoCLI/internal/models"
)

const tagsFilterPrefix = "tags:"

// List returns the entries matching a single filter token, in stored order.
// An empty filter returns every entry. The token shape picks the filter:
//
//	tags:<name>  entries with a tag equal to name, ignoring case
//	YYYY-MM      entries whose date starts with the token
//	<other>      entries whose category or subcategory equals it, ignoring case
func List(idx *models.IndexFile, filter string) []models.IndexEntry {
	if idx == nil {
		return nil
	}
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return append([]models.IndexEntry{}, idx.Entries...)
	}

	match := listMatcher(filter)
	out := []models.IndexEntry{}
	for _, e := range idx.Entries {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}

func listMatcher(filter string) func(models.IndexEntry) bool {
	if hasPrefixFold(filter, tagsFilterPrefix) {
		tag := strings.TrimSpace(filter[len(tagsFilterPrefix):])
		return func(e models.IndexEntry) bool { return hasTagFold(e.Tags, tag) }
	}
	if isMonthToken(filter) {
		return func(e models.IndexEntry) bool {
			return e.Date != nil && strings.HasPrefix(*e.Date, filter)
		}
	}
	return func(e models.IndexEntry) bool {
		return strings.EqualFold(e.Category, filter) ||
			(e.Subcategory != nil && strings.EqualFold(*e.Subcategory, filter))
	}
}

// isMonthToken reports whether s has the year-month shape: seven characters
// with exactly one dash.
func isMonthToken(s string) bool {
	return utf8.RuneCountInString(s) == 7 && strings.Count(s, "-") == 1
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func hasTagFold(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
