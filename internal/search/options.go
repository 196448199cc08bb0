package search

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidOptions marks malformed search options; callers can map it to
// a client error.
var ErrInvalidOptions = errors.New("search: invalid options")

// Sort modes for search results.
const (
	SortRelevance = "relevance"
	SortDate      = "date"
	SortTitle     = "title"
)

// DefaultLimit is the result cap applied when Options.Limit is unset.
const DefaultLimit = 50

// DefaultSuggestLimit caps Suggest results when no limit is given.
const DefaultSuggestLimit = 5

// Options are the structured constraints applied to a search, after text
// scoring and before sorting.
type Options struct {
	// CategoryID keeps only notes in this category (exact match).
	CategoryID string
	// TagIDs keeps notes carrying at least one of these tags (OR semantics).
	TagIDs []string
	// Favorite, when set, keeps only notes whose favorite flag equals it.
	Favorite *bool
	// From/To bound the note's updated timestamp, inclusive on both ends.
	From *time.Time
	To   *time.Time
	// Sort is one of SortRelevance (default), SortDate, SortTitle.
	Sort string
	// Limit caps the result count; 0 means DefaultLimit.
	Limit int
}

// Validate rejects malformed options before any filtering begins.
func (o Options) Validate() error {
	if err := validation.ValidateStruct(&o,
		validation.Field(&o.Sort, validation.In("", SortRelevance, SortDate, SortTitle)),
		validation.Field(&o.Limit, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if o.From != nil && o.To != nil && o.From.After(*o.To) {
		return fmt.Errorf("%w: date range start after end", ErrInvalidOptions)
	}
	return nil
}

// hasFilter reports whether any structured constraint is set.
func (o Options) hasFilter() bool {
	return o.CategoryID != "" || len(o.TagIDs) > 0 || o.Favorite != nil ||
		o.From != nil || o.To != nil
}

func (o Options) limit() int {
	if o.Limit <= 0 {
		return DefaultLimit
	}
	return o.Limit
}
