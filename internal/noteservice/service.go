// Package noteservice coordinates the note store and the search engine:
// every mutation to the canonical corpus is mirrored into the index.
package noteservice

import (
	"context"
	"fmt"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/notestore"
	"github.com/starford/laguz/internal/search"
)

// EventFunc is called after a successful corpus mutation.
// kind is one of "created", "updated", "deleted".
type EventFunc func(kind, id string)

// Service coordinates store and index operations.
type Service struct {
	store  *notestore.Store
	engine *search.Engine
	notify EventFunc
}

// NewService creates a new note service. notify may be nil.
func NewService(store *notestore.Store, engine *search.Engine, notify EventFunc) *Service {
	if notify == nil {
		notify = func(string, string) {}
	}
	return &Service{store: store, engine: engine, notify: notify}
}

// NoteInput is the mutable part of a note. Category is a category name
// (created on demand); Tags are tag names.
type NoteInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Favorite bool     `json:"favorite"`
}

// GetNote returns a single note.
func (s *Service) GetNote(ctx context.Context, id string) (*models.Note, error) {
	return s.store.Get(ctx, id)
}

// ListNotes returns the full corpus in store order.
func (s *Service) ListNotes(ctx context.Context) ([]models.Note, error) {
	return s.store.ListAll(ctx)
}

// CreateNote stores a new note and upserts it into the index.
func (s *Service) CreateNote(ctx context.Context, in NoteInput) (*models.Note, error) {
	note, err := s.resolve(ctx, models.Note{}, in)
	if err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, note)
	if err != nil {
		return nil, err
	}
	s.engine.Upsert(*created)
	s.notify("created", created.ID)
	return created, nil
}

// UpdateNote rewrites an existing note and refreshes its index entry.
func (s *Service) UpdateNote(ctx context.Context, id string, in NoteInput) (*models.Note, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	note, err := s.resolve(ctx, *existing, in)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.Update(ctx, note)
	if err != nil {
		return nil, err
	}
	s.engine.Upsert(*updated)
	s.notify("updated", updated.ID)
	return updated, nil
}

// ToggleFavorite flips a note's favorite flag.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (*models.Note, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Favorite = !existing.Favorite
	updated, err := s.store.Update(ctx, *existing)
	if err != nil {
		return nil, err
	}
	s.engine.Upsert(*updated)
	s.notify("updated", updated.ID)
	return updated, nil
}

// DeleteNote removes a note from the store and the index.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.engine.Remove(id)
	s.notify("deleted", id)
	return nil
}

// BulkImport creates many notes and refreshes the index with a single
// rebuild rather than per-note upserts. Returns the number created.
func (s *Service) BulkImport(ctx context.Context, inputs []NoteInput) (int, error) {
	created := 0
	for _, in := range inputs {
		note, err := s.resolve(ctx, models.Note{}, in)
		if err != nil {
			return created, err
		}
		if _, err := s.store.Create(ctx, note); err != nil {
			return created, fmt.Errorf("noteservice: import %q: %w", in.Title, err)
		}
		created++
	}
	if created > 0 {
		if err := s.engine.Rebuild(ctx); err != nil {
			return created, err
		}
		s.notify("created", "")
	}
	return created, nil
}

// Search delegates to the search engine.
func (s *Service) Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error) {
	return s.engine.Search(ctx, query, opts)
}

// Suggest delegates auto-complete to the search engine.
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	return s.engine.Suggest(ctx, query, limit)
}

// Stats returns index statistics, building the index if needed.
func (s *Service) Stats(ctx context.Context) (search.Stats, error) {
	return s.engine.Stats(ctx)
}

// Rebuild forces a full index refresh from the store.
func (s *Service) Rebuild(ctx context.Context) error {
	return s.engine.Rebuild(ctx)
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

// resolve turns a NoteInput into a storable note, creating the category
// and tags on demand. base carries identity and timestamps on update.
func (s *Service) resolve(ctx context.Context, base models.Note, in NoteInput) (models.Note, error) {
	base.Title = in.Title
	base.Content = in.Content
	base.Favorite = in.Favorite
	base.CategoryID = ""
	base.CategoryName = ""
	base.Tags = nil

	if in.Category != "" {
		cat, err := s.store.EnsureCategory(ctx, in.Category, "")
		if err != nil {
			return base, err
		}
		base.CategoryID = cat.ID
		base.CategoryName = cat.Name
	}
	if len(in.Tags) > 0 {
		tags, err := s.store.EnsureTags(ctx, in.Tags)
		if err != nil {
			return base, err
		}
		base.Tags = tags
	}
	return base, nil
}
