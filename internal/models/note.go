// Package models defines the domain types for Laguz.
package models

import "time"

// Note represents a stored note: Markdown content plus organizational
// metadata (category, tags, favorite flag). Category name is denormalized
// onto the note for display and indexing.
type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	CategoryID   string    `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	Tags         []Tag     `json:"tags"`
	Favorite     bool      `json:"favorite"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Tag is a named label attached to a note.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category groups notes.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// UntitledPlaceholder is the display title for notes with an empty title.
// Title sorting uses the same substitute so untitled notes group together.
const UntitledPlaceholder = "Untitled"

// DisplayTitle returns the note title, falling back to UntitledPlaceholder.
func (n Note) DisplayTitle() string {
	if n.Title == "" {
		return UntitledPlaceholder
	}
	return n.Title
}
