package search

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Suggest returns auto-complete candidates for query: note titles first,
// then tag names, then category names, each matched by case-insensitive
// substring containment. The result is duplicate-free, ordered by those
// three passes, and truncated to limit (DefaultSuggestLimit when <= 0).
// Queries shorter than two characters yield no suggestions.
func (e *Engine) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	if utf8.RuneCountInString(query) < 2 {
		return []string{}, nil
	}
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	entries := e.snapshot()

	seen := make(map[string]struct{})
	out := []string{}
	add := func(s string) {
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, en := range entries {
		if strings.Contains(strings.ToLower(en.Note.Title), q) {
			add(en.Note.Title)
		}
	}
	for _, en := range entries {
		for _, t := range en.Note.Tags {
			if strings.Contains(strings.ToLower(t.Name), q) {
				add(t.Name)
			}
		}
	}
	for _, en := range entries {
		if strings.Contains(strings.ToLower(en.Note.CategoryName), q) {
			add(en.Note.CategoryName)
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
