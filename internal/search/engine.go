// Package search implements the in-memory note index: relevance scoring,
// structured filtering, auto-complete suggestions, and the incremental
// maintenance operations that keep the index consistent with the corpus.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/sync/singleflight"

	"github.com/starford/laguz/internal/models"
)

// Corpus is the engine's read-only view of the canonical note store.
type Corpus interface {
	ListAll(ctx context.Context) ([]models.Note, error)
}

// Index lifecycle states.
type state int

const (
	stateUninitialized state = iota
	stateBuilding
	stateReady
)

// Engine owns the search index. All mutation goes through Upsert, Remove,
// and Rebuild; query paths build the index lazily on first use.
//
// The index map is insertion-ordered: insertion order doubles as the stable
// tie-break for every sort mode. Re-upserting an existing note keeps its
// original position.
type Engine struct {
	corpus Corpus
	logger *slog.Logger

	mu      sync.RWMutex
	st      state
	entries *orderedmap.OrderedMap[string, *Entry]

	// buildGroup collapses concurrent initial builds into a single
	// corpus fetch.
	buildGroup singleflight.Group
}

// New creates an engine over the given corpus. The index stays empty until
// Initialize or the first query.
func New(corpus Corpus, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		corpus:  corpus,
		logger:  logger,
		entries: orderedmap.New[string, *Entry](),
	}
}

// Initialize builds the index if it has never been built. Concurrent calls
// share one in-flight build. A fetch failure propagates and leaves the
// index in its prior state.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.RLock()
	ready := e.st == stateReady
	e.mu.RUnlock()
	if ready {
		return nil
	}
	return e.build(ctx)
}

// build fetches the full corpus and replaces the index contents. It is
// idempotent: a second build observes the same state as the first.
func (e *Engine) build(ctx context.Context) error {
	_, err, _ := e.buildGroup.Do("build", func() (any, error) {
		e.mu.Lock()
		prev := e.st
		if prev == stateReady {
			// Another caller finished the build while we queued.
			e.mu.Unlock()
			return nil, nil
		}
		e.st = stateBuilding
		e.mu.Unlock()

		notes, err := e.corpus.ListAll(ctx)
		if err != nil {
			e.mu.Lock()
			e.st = prev
			e.mu.Unlock()
			return nil, fmt.Errorf("search: fetch corpus: %w", err)
		}

		m := orderedmap.New[string, *Entry]()
		for _, n := range notes {
			m.Set(n.ID, newEntry(n))
		}

		e.mu.Lock()
		e.entries = m
		e.st = stateReady
		e.mu.Unlock()

		e.logger.Debug("search: index built", slog.Int("entries", m.Len()))
		return nil, nil
	})
	return err
}

// Upsert recomputes the entry for a single note and (re)inserts it. It is a
// no-op before the first successful build: the build will pick the note up
// from the corpus anyway.
func (e *Engine) Upsert(n models.Note) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st != stateReady {
		return
	}
	e.entries.Set(n.ID, newEntry(n))
}

// Remove deletes the entry for id. Removing an unknown id is a no-op.
func (e *Engine) Remove(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st != stateReady {
		return
	}
	e.entries.Delete(id)
}

// Rebuild forces a full refresh from the corpus. If the refresh fails, a
// previously built index stays usable.
func (e *Engine) Rebuild(ctx context.Context) error {
	e.mu.Lock()
	prev := e.st
	e.st = stateUninitialized
	e.mu.Unlock()

	if err := e.Initialize(ctx); err != nil {
		e.mu.Lock()
		if e.st != stateReady && prev == stateReady {
			e.st = stateReady
		}
		e.mu.Unlock()
		return err
	}
	return nil
}

// Stats describes the current index contents.
type Stats struct {
	Entries           int     `json:"entries"`
	TotalTerms        int     `json:"total_terms"`
	MeanTermsPerEntry float64 `json:"mean_terms_per_entry"`
}

// Stats builds the index if needed and returns entry and term counts.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	if err := e.Initialize(ctx); err != nil {
		return Stats{}, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Stats{Entries: e.entries.Len()}
	for pair := e.entries.Oldest(); pair != nil; pair = pair.Next() {
		s.TotalTerms += len(pair.Value.terms)
	}
	if s.Entries > 0 {
		s.MeanTermsPerEntry = float64(s.TotalTerms) / float64(s.Entries)
	}
	return s, nil
}

// snapshot returns the entries in insertion order. Entries are immutable
// after construction, so the returned slice is a consistent view.
func (e *Engine) snapshot() []*Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*Entry, 0, e.entries.Len())
	for pair := e.entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}
