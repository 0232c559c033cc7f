package query

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sp00kydogz/CuadernoCLI/internal/models"
)

// Field weights added per free term that matches the field.
const (
	WeightTitle       = 30
	WeightTag         = 20
	WeightSummary     = 10
	WeightPath        = 6
	WeightCategory    = 4
	WeightSubcategory = 4

	// WeightExplicitTag is added once when a tag: qualifier matches exactly.
	WeightExplicitTag = 15

	// MaxRecency is the bonus of a note modified today. It drops by one for
	// every recencyStepDays of age, reaching zero at a year.
	MaxRecency      = 10
	recencyStepDays = 36
	recencyMaxDays  = 365
)

var tokenRe = regexp.MustCompile(`([A-Za-z]+:)?"([^"]+)"|(\S+)`)

// Query is a parsed search. Empty qualifier fields apply no filter.
type Query struct {
	Terms []string `json:"terms,omitempty"`
	Tag   string   `json:"tag,omitempty"`
	Cat   string   `json:"cat,omitempty"`
	Sub   string   `json:"sub,omitempty"`
	Date  string   `json:"date,omitempty"`
}

// Hit is one ranked search result.
type Hit struct {
	Entry models.IndexEntry `json:"entry"`
	Score int               `json:"score"`
}

// Tokenize splits text on whitespace, keeping double-quoted phrases as one
// token without the quotes. A quoted phrase may follow a key, as in
// tag:"dos palabras".
func Tokenize(text string) []string {
	var out []string
	for _, m := range tokenRe.FindAllStringSubmatch(text, -1) {
		if m[3] != "" {
			out = append(out, m[3])
		} else {
			out = append(out, m[1]+m[2])
		}
	}
	return out
}

// ParseQuery splits text into free terms and the tag:, cat:, sub: and date:
// qualifiers. Qualifier prefixes ignore case and their values lose any
// surrounding quotes; a qualifier left empty is ignored and a repeated one
// keeps the last value. Anything else is a free term.
func ParseQuery(text string) Query {
	var q Query
	for _, tok := range Tokenize(text) {
		switch {
		case hasPrefixFold(tok, "tag:"):
			setQualifier(&q.Tag, tok[len("tag:"):])
		case hasPrefixFold(tok, "cat:"):
			setQualifier(&q.Cat, tok[len("cat:"):])
		case hasPrefixFold(tok, "sub:"):
			setQualifier(&q.Sub, tok[len("sub:"):])
		case hasPrefixFold(tok, "date:"):
			setQualifier(&q.Date, tok[len("date:"):])
		default:
			q.Terms = append(q.Terms, tok)
		}
	}
	return q
}

func setQualifier(dst *string, value string) {
	if v := strings.Trim(value, `"`); v != "" {
		*dst = v
	}
}

// Searcher ranks entries against queries. The zero value uses the wall clock.
type Searcher struct {
	Now func() time.Time
}

// Search parses text and ranks the matching entries, best first.
func (s Searcher) Search(idx *models.IndexFile, text string) []Hit {
	return s.Run(idx, ParseQuery(text))
}

// Run ranks the entries matching q. Qualifiers filter first, then every free
// term must appear in at least one field. Ties keep the most recently
// modified entry first.
func (s Searcher) Run(idx *models.IndexFile, q Query) []Hit {
	hits := []Hit{}
	if idx == nil {
		return hits
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	terms := make([]string, len(q.Terms))
	for i, t := range q.Terms {
		terms[i] = strings.ToLower(t)
	}

	for _, e := range idx.Entries {
		if !q.accepts(e) || !matchesAll(e, terms) {
			continue
		}
		hits = append(hits, Hit{Entry: e, Score: score(e, terms, q.Tag, now)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Entry.Modified.After(hits[j].Entry.Modified)
	})
	return hits
}

func (q Query) accepts(e models.IndexEntry) bool {
	if q.Tag != "" && !hasTagFold(e.Tags, q.Tag) {
		return false
	}
	if q.Cat != "" && !strings.EqualFold(e.Category, q.Cat) {
		return false
	}
	if q.Sub != "" && !strings.EqualFold(e.SubcategoryOrEmpty(), q.Sub) {
		return false
	}
	if q.Date != "" && !hasPrefixFold(e.DateOrEmpty(), q.Date) {
		return false
	}
	return true
}

// contains reports whether lowered term occurs in s, ignoring case.
func contains(s, term string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), term)
}

func anyTagContains(tags []string, term string) bool {
	for _, t := range tags {
		if contains(t, term) {
			return true
		}
	}
	return false
}

func matchesAll(e models.IndexEntry, terms []string) bool {
	for _, t := range terms {
		if !matches(e, t) {
			return false
		}
	}
	return true
}

func matches(e models.IndexEntry, term string) bool {
	return contains(e.Title, term) ||
		contains(e.Path, term) ||
		contains(e.Category, term) ||
		contains(e.SubcategoryOrEmpty(), term) ||
		contains(e.DateOrEmpty(), term) ||
		contains(e.SummaryOrEmpty(), term) ||
		anyTagContains(e.Tags, term)
}

func score(e models.IndexEntry, terms []string, explicitTag string, now time.Time) int {
	total := 0
	for _, t := range terms {
		if contains(e.Title, t) {
			total += WeightTitle
		}
		if anyTagContains(e.Tags, t) {
			total += WeightTag
		}
		if contains(e.SummaryOrEmpty(), t) {
			total += WeightSummary
		}
		if contains(e.Path, t) {
			total += WeightPath
		}
		if contains(e.Category, t) {
			total += WeightCategory
		}
		if contains(e.SubcategoryOrEmpty(), t) {
			total += WeightSubcategory
		}
	}
	if explicitTag != "" && hasTagFold(e.Tags, explicitTag) {
		total += WeightExplicitTag
	}
	return total + Recency(e.Modified, now)
}

// Recency returns the age bonus for a note last modified at mod.
func Recency(mod, now time.Time) int {
	days := int(now.Sub(mod).Hours() / 24)
	days = max(0, min(days, recencyMaxDays))
	return MaxRecency - min(MaxRecency, days/recencyStepDays)
}
