package index

import (
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var datePrefixRe = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}[-_ ]`)

// DeriveTitle builds a display title from a note's file name:
// "2025-09-10-Resumen-VLAN.md" becomes "Resumen VLAN".
func DeriveTitle(rel string) string {
	name := path.Base(rel)
	stem := strings.TrimSuffix(name, path.Ext(name))

	t := datePrefixRe.ReplaceAllString(stem, "")
	t = strings.NewReplacer("-", " ", "_", " ").Replace(t)
	if strings.TrimSpace(t) == "" {
		t = stem
	}
	return capitalize(t)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
