package api

import (
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/search"
)

// NoteRequest is the request body for creating or replacing a note.
type NoteRequest = noteservice.NoteInput

// NoteResponse is the full note payload.
type NoteResponse = models.Note

// NoteListResponse wraps a full corpus listing.
type NoteListResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps ranked search results. Score is present only when
// a free-text query was scored.
type SearchResponse struct {
	Results []search.Result `json:"results" validate:"required"`
	Total   int             `json:"total" example:"3" validate:"required"`
}

// SuggestResponse wraps auto-complete suggestions.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions" validate:"required"`
}

// CategoryListResponse wraps a category listing.
type CategoryListResponse struct {
	Categories []models.Category `json:"categories" validate:"required"`
}
