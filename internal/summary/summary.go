// Package summary derives short plain-text excerpts from note bodies.
package summary

import (
	"regexp"
	"strings"

	"github.com/sp00kydogz/CuadernoCLI/internal/parser"
)

// MaxWords is the word budget of a summary.
const MaxWords = 12

var (
	headingRe = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	starEmRe  = regexp.MustCompile(`\*{1,3}(.+?)\*{1,3}`)
	underEmRe = regexp.MustCompile(`_{1,3}(.+?)_{1,3}`)
	imageRe   = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linkRe    = regexp.MustCompile(`\[[^\]]+\]\(([^)]+)\)`)
)

// Summarize returns the first MaxWords words of text after stripping light
// Markdown. When hasHeader is true the leading metadata block is dropped
// first. It returns nil when nothing but whitespace remains.
func Summarize(text string, hasHeader bool) *string {
	if hasHeader {
		text = parser.StripHeader(text)
	}

	words := strings.Fields(Strip(text))
	if len(words) == 0 {
		return nil
	}
	if len(words) > MaxWords {
		words = words[:MaxWords]
	}
	s := strings.Join(words, " ")
	return &s
}

// Strip removes heading markers, emphasis markers and images, and replaces
// links with their target.
func Strip(s string) string {
	s = headingRe.ReplaceAllString(s, "")
	s = starEmRe.ReplaceAllString(s, "$1")
	s = underEmRe.ReplaceAllString(s, "$1")
	s = imageRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	return s
}
