package search

import (
	"regexp"
	"strings"

	"github.com/starford/laguz/internal/markdown"
	"github.com/starford/laguz/internal/models"
)

var nonWordRe = regexp.MustCompile(`\W+`)

// Entry is a note's precomputed searchable representation held in the index.
type Entry struct {
	Note models.Note

	// searchable is the lower-cased concatenation of title, plain-text
	// body, category name, and tag names.
	searchable string
	// terms are normalized tokens over searchable. Duplicates are kept:
	// repeated terms boost fuzzy-match scoring.
	terms []string
}

func newEntry(n models.Note) *Entry {
	parts := make([]string, 0, 3+len(n.Tags))
	parts = append(parts, n.Title, markdown.PlainText(n.Content), n.CategoryName)
	for _, t := range n.Tags {
		parts = append(parts, t.Name)
	}
	searchable := strings.ToLower(strings.Join(parts, " "))
	return &Entry{
		Note:       n,
		searchable: searchable,
		terms:      Tokenize(searchable),
	}
}

// Tokenize splits s on whitespace runs, discards raw tokens of length 2 or
// less, strips non-word characters from the survivors, and drops any token
// left empty. Order is preserved and duplicates are kept. The input is
// expected to be lower-cased already.
func Tokenize(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 2 {
			continue
		}
		cleaned := nonWordRe.ReplaceAllString(f, "")
		if cleaned == "" {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

// score sums the relevance contribution of every query term against this
// entry. A zero score means the entry did not match at all.
func (en *Entry) score(queryTerms []string) int {
	title := strings.ToLower(en.Note.Title)
	category := strings.ToLower(en.Note.CategoryName)

	total := 0
	for _, term := range queryTerms {
		if strings.Contains(title, term) {
			total += 10
		}
		if strings.Contains(en.searchable, term) {
			total += 5
		}
		// Symmetric substring fuzzy match against every stored term.
		for _, st := range en.terms {
			if strings.Contains(st, term) || strings.Contains(term, st) {
				total += 2
			}
		}
		if strings.Contains(category, term) {
			total += 3
		}
		for _, tag := range en.Note.Tags {
			if strings.Contains(strings.ToLower(tag.Name), term) {
				total += 3
			}
		}
	}
	return total
}
