package storage

import (
	"path"
	"strings"
)

// ReservedPrefix marks system files (the index, config) that are never notes.
const ReservedPrefix = "_"

const vcsDir = ".git"

var noteExtensions = map[string]struct{}{
	".md":  {},
	".txt": {},
}

// IsNote reports whether rel, a '/'-separated path relative to the note root,
// names an eligible note file.
func IsNote(rel string) bool {
	name := path.Base(rel)
	if strings.HasPrefix(name, ReservedPrefix) {
		return false
	}
	if _, ok := noteExtensions[strings.ToLower(path.Ext(name))]; !ok {
		return false
	}
	for _, seg := range strings.Split(rel, "/") {
		if SkipSegment(seg) {
			return false
		}
	}
	return true
}

// SkipSegment reports whether a path segment hides everything beneath it.
func SkipSegment(name string) bool {
	return strings.HasPrefix(name, ".") || name == vcsDir
}
