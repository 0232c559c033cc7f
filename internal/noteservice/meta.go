package noteservice

import (
	"regexp"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/sp00kydogz/CuadernoCLI/internal/models"
)

// metaTokenRe matches key:"quoted value", a bare quoted phrase, or a plain
// whitespace-free token.
var metaTokenRe = regexp.MustCompile(`([+-]?[A-Za-z]+:)?"([^"]*)"|(\S+)`)

// TokenizeMetaOps splits a metadata operation string into key:value tokens.
// A quoted value may contain spaces; a bare quoted phrase is a title.
func TokenizeMetaOps(ops string) []string {
	var out []string
	for _, m := range metaTokenRe.FindAllStringSubmatch(ops, -1) {
		switch {
		case m[3] != "":
			out = append(out, m[3])
		case m[1] != "":
			out = append(out, m[1]+m[2])
		default:
			out = append(out, "title:"+m[2])
		}
	}
	return out
}

// ApplyMetaOps edits h in place. Supported operations:
//
//	title:"Nuevo título"  set the title
//	date:2025-09-10       set the date; other layouts dateparse knows are
//	                      rewritten as YYYY-MM-DD
//	tags:a,b,c            replace all tags
//	+tag:x                add x unless a tag equal to it (ignoring case) exists
//	-tag:x                remove every tag equal to x, ignoring case
//
// Keys ignore case. Unknown tokens are skipped.
func ApplyMetaOps(h *models.Header, ops string) {
	for _, tok := range TokenizeMetaOps(ops) {
		key, value, ok := strings.Cut(tok, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(key) {
		case "title":
			t := strings.Trim(value, `"`)
			h.Title = &t
		case "date":
			d := normalizeDate(value)
			h.Date = &d
		case "tags":
			h.Tags = splitTags(value)
		case "+tag":
			if value != "" && !containsFold(h.Tags, value) {
				h.Tags = append(h.Tags, value)
			}
		case "-tag":
			h.Tags = removeFold(h.Tags, value)
		}
	}
}

// normalizeDate rewrites a recognizable date as YYYY-MM-DD and leaves
// anything else as written. Slash dates with two numbers are read month first.
func normalizeDate(value string) string {
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return value
	}
	return t.Format(dateLayout)
}

func splitTags(value string) []string {
	tags := []string{}
	for _, t := range strings.Split(value, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func containsFold(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func removeFold(tags []string, tag string) []string {
	out := []string{}
	for _, t := range tags {
		if !strings.EqualFold(t, tag) {
			out = append(out, t)
		}
	}
	return out
}
