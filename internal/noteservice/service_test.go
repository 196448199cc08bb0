package noteservice_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/notestore"
	"github.com/starford/laguz/internal/search"
	"github.com/starford/laguz/internal/testutil"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) record(kind, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, kind)
}

func (l *eventLog) kinds() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func testService(t *testing.T) (*noteservice.Service, *notestore.Store, *eventLog) {
	t.Helper()
	store := testutil.TestStore(t)
	engine := testutil.TestEngine(t, store)
	log := &eventLog{}
	return noteservice.NewService(store, engine, log.record), store, log
}

func TestCreateNoteResolvesMetadata(t *testing.T) {
	svc, _, log := testService(t)
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, noteservice.NoteInput{
		Title:    "Standup Notes",
		Content:  "talked about the release",
		Category: "Work",
		Tags:     []string{"meetings", "release"},
		Favorite: true,
	})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if note.CategoryID == "" || note.CategoryName != "Work" {
		t.Errorf("category not resolved: %+v", note)
	}
	if len(note.Tags) != 2 {
		t.Errorf("got %d tags, want 2", len(note.Tags))
	}
	if !note.Favorite {
		t.Error("favorite flag lost")
	}
	if got := log.kinds(); len(got) != 1 || got[0] != "created" {
		t.Errorf("events = %v, want [created]", got)
	}

	// The new note is searchable immediately.
	results, err := svc.Search(ctx, "standup", search.Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != note.ID {
		t.Errorf("results = %+v, want the created note", results)
	}
}

func TestUpdateNoteRefreshesIndex(t *testing.T) {
	svc, _, log := testService(t)
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, noteservice.NoteInput{Title: "Draft"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if _, err := svc.UpdateNote(ctx, note.ID, noteservice.NoteInput{Title: "Quarterly Plan"}); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}

	if results, _ := svc.Search(ctx, "quarterly", search.Options{}); len(results) != 1 {
		t.Errorf("new title not searchable: %d results", len(results))
	}
	if results, _ := svc.Search(ctx, "draft", search.Options{}); len(results) != 0 {
		t.Errorf("stale title still searchable: %d results", len(results))
	}
	if got := log.kinds(); len(got) != 2 || got[1] != "updated" {
		t.Errorf("events = %v, want [created updated]", got)
	}
}

func TestUpdateNoteNotFound(t *testing.T) {
	svc, _, _ := testService(t)
	_, err := svc.UpdateNote(context.Background(), "missing", noteservice.NoteInput{Title: "x"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestToggleFavorite(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, noteservice.NoteInput{Title: "Pin me"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	toggled, err := svc.ToggleFavorite(ctx, note.ID)
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if !toggled.Favorite {
		t.Error("first toggle should set favorite")
	}
	toggled, err = svc.ToggleFavorite(ctx, note.ID)
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if toggled.Favorite {
		t.Error("second toggle should clear favorite")
	}
}

func TestDeleteNote(t *testing.T) {
	svc, _, log := testService(t)
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, noteservice.NoteInput{Title: "Ephemeral"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if err := svc.DeleteNote(ctx, note.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if _, err := svc.GetNote(ctx, note.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetNote after delete = %v, want ErrNotFound", err)
	}
	if results, _ := svc.Search(ctx, "ephemeral", search.Options{}); len(results) != 0 {
		t.Errorf("deleted note still searchable: %d results", len(results))
	}
	if err := svc.DeleteNote(ctx, note.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second DeleteNote = %v, want ErrNotFound", err)
	}
	if got := log.kinds(); len(got) != 2 || got[1] != "deleted" {
		t.Errorf("events = %v, want [created deleted]", got)
	}
}

func TestBulkImport(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	n, err := svc.BulkImport(ctx, []noteservice.NoteInput{
		{Title: "Kubernetes Basics", Tags: []string{"infra"}},
		{Title: "Terraform Modules", Tags: []string{"infra"}},
		{Title: "Sourdough Starter"},
	})
	if err != nil {
		t.Fatalf("BulkImport: %v", err)
	}
	if n != 3 {
		t.Errorf("imported %d notes, want 3", n)
	}

	results, err := svc.Search(ctx, "infra", search.Options{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestBulkImportEmpty(t *testing.T) {
	svc, _, log := testService(t)
	n, err := svc.BulkImport(context.Background(), nil)
	if err != nil {
		t.Fatalf("BulkImport: %v", err)
	}
	if n != 0 {
		t.Errorf("imported %d notes, want 0", n)
	}
	if got := log.kinds(); len(got) != 0 {
		t.Errorf("events = %v, want none", got)
	}
}

func TestCategoriesSharedAcrossNotes(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, noteservice.NoteInput{Title: "A", Category: "Work"}); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if _, err := svc.CreateNote(ctx, noteservice.NoteInput{Title: "B", Category: "Work"}); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	cats, err := store.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 1 {
		t.Errorf("got %d categories, want 1", len(cats))
	}
}
