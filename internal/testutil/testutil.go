// Package testutil provides shared test helpers for setting up stores and engines.
package testutil

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/notestore"
	"github.com/starford/laguz/internal/search"
)

// TestStore creates a temporary SQLite note store that is automatically cleaned up.
func TestStore(t *testing.T) *notestore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "laguz-test.db")
	store, err := notestore.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestEngine creates a search engine over the given store and builds its index.
func TestEngine(t *testing.T, store *notestore.Store) *search.Engine {
	t.Helper()
	engine := search.New(store, DiscardLogger())
	if err := engine.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	return engine
}

// SeedNote creates a note through the store and fails the test on error.
func SeedNote(t *testing.T, store *notestore.Store, note models.Note) models.Note {
	t.Helper()
	created, err := store.Create(context.Background(), note)
	if err != nil {
		t.Fatal(err)
	}
	return *created
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
