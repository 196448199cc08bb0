package search

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/laguz/internal/models"
)

// Result is a search hit. Score is populated only when a free-text query
// was scored under relevance sorting.
type Result struct {
	models.Note
	Score int `json:"score,omitempty"`
}

// Search runs the query pipeline: text scoring, structured filters, sort,
// limit — in that fixed order.
//
// When query is empty and no structured filter is set, the corpus is
// returned as-is from the store, bypassing the index entirely. That cheap
// "show everything" path reflects the store's canonical ordering and
// ignores the sort option.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if query == "" && !opts.hasFilter() {
		notes, err := e.corpus.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Result, len(notes))
		for i, n := range notes {
			out[i] = Result{Note: n}
		}
		return out, nil
	}

	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}

	type hit struct {
		entry *Entry
		score int
	}

	entries := e.snapshot()
	scored := query != ""

	var hits []hit
	if scored {
		terms := strings.Fields(strings.ToLower(query))
		for _, en := range entries {
			if s := en.score(terms); s > 0 {
				hits = append(hits, hit{entry: en, score: s})
			}
		}
	} else {
		hits = make([]hit, 0, len(entries))
		for _, en := range entries {
			hits = append(hits, hit{entry: en})
		}
	}

	keep := func(pred func(models.Note) bool) {
		kept := hits[:0]
		for _, h := range hits {
			if pred(h.entry.Note) {
				kept = append(kept, h)
			}
		}
		hits = kept
	}

	if opts.CategoryID != "" {
		keep(func(n models.Note) bool { return n.CategoryID == opts.CategoryID })
	}
	if len(opts.TagIDs) > 0 {
		wanted := make(map[string]struct{}, len(opts.TagIDs))
		for _, id := range opts.TagIDs {
			wanted[id] = struct{}{}
		}
		keep(func(n models.Note) bool {
			for _, t := range n.Tags {
				if _, ok := wanted[t.ID]; ok {
					return true
				}
			}
			return false
		})
	}
	if opts.Favorite != nil {
		keep(func(n models.Note) bool { return n.Favorite == *opts.Favorite })
	}
	if opts.From != nil {
		keep(func(n models.Note) bool { return !n.UpdatedAt.Before(*opts.From) })
	}
	if opts.To != nil {
		keep(func(n models.Note) bool { return !n.UpdatedAt.After(*opts.To) })
	}

	// Stable sorts so that ties preserve index insertion order.
	byDateDesc := func(i, j int) bool {
		return hits[i].entry.Note.UpdatedAt.After(hits[j].entry.Note.UpdatedAt)
	}
	switch opts.Sort {
	case SortDate:
		sort.SliceStable(hits, byDateDesc)
	case SortTitle:
		col := collate.New(language.Und, collate.Loose)
		sort.SliceStable(hits, func(i, j int) bool {
			a := hits[i].entry.Note.DisplayTitle()
			b := hits[j].entry.Note.DisplayTitle()
			return col.CompareString(a, b) < 0
		})
	default: // relevance
		if scored {
			sort.SliceStable(hits, func(i, j int) bool {
				return hits[i].score > hits[j].score
			})
		} else {
			// Structured filters without a query: most recently
			// updated first.
			sort.SliceStable(hits, byDateDesc)
		}
	}

	if limit := opts.limit(); len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]Result, len(hits))
	for i, h := range hits {
		out[i] = Result{Note: h.entry.Note}
		if scored {
			out[i].Score = h.score
		}
	}
	return out, nil
}
