package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/search"
	"github.com/starford/laguz/internal/testutil"
)

// testEnv sets up a temp store, engine, service, and router for testing.
// An empty authToken means disabled auth mode.
func testEnv(t *testing.T, authToken string) (*noteservice.Service, http.Handler) {
	t.Helper()
	store := testutil.TestStore(t)
	engine := testutil.TestEngine(t, store)
	svc := noteservice.NewService(store, engine, nil)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", noteservice.NoteInput{
		Title:    "Hello",
		Content:  "world",
		Category: "Work",
		Tags:     []string{"greetings"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Note
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created note: %v", err)
	}
	if created.ID == "" || created.CategoryName != "Work" {
		t.Errorf("created = %+v", created)
	}

	w = doJSON(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Title != "Hello" {
		t.Errorf("title = %q, want Hello", got.Title)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "greetings" {
		t.Errorf("tags = %+v", got.Tags)
	}
}

func TestCreateNoteRejectsEmpty(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodPost, "/notes", noteservice.NoteInput{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateNoteRejectsBadJSON(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetNoteNotFound(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodGet, "/notes/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListNotes(t *testing.T) {
	svc, router := testEnv(t, "")
	for _, title := range []string{"one", "two"} {
		if _, err := svc.CreateNote(t.Context(), noteservice.NoteInput{Title: title}); err != nil {
			t.Fatalf("CreateNote: %v", err)
		}
	}

	w := doJSON(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Notes) != 2 {
		t.Errorf("total = %d, notes = %d, want 2 each", resp.Total, len(resp.Notes))
	}
}

func TestUpdateNote(t *testing.T) {
	svc, router := testEnv(t, "")
	note, err := svc.CreateNote(t.Context(), noteservice.NoteInput{Title: "Draft"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	w := doJSON(t, router, http.MethodPut, "/notes/"+note.ID, noteservice.NoteInput{Title: "Final"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var updated models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Title != "Final" {
		t.Errorf("title = %q, want Final", updated.Title)
	}

	w = doJSON(t, router, http.MethodPut, "/notes/missing", noteservice.NoteInput{Title: "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	svc, router := testEnv(t, "")
	note, err := svc.CreateNote(t.Context(), noteservice.NoteInput{Title: "Doomed"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	w := doJSON(t, router, http.MethodDelete, "/notes/"+note.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodDelete, "/notes/"+note.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestToggleFavorite(t *testing.T) {
	svc, router := testEnv(t, "")
	note, err := svc.CreateNote(t.Context(), noteservice.NoteInput{Title: "Pin"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	w := doJSON(t, router, http.MethodPost, "/notes/"+note.ID+"/favorite", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var toggled models.Note
	_ = json.Unmarshal(w.Body.Bytes(), &toggled)
	if !toggled.Favorite {
		t.Error("favorite not set")
	}
}

func TestSearchEndpoint(t *testing.T) {
	svc, router := testEnv(t, "")
	if _, err := svc.CreateNote(t.Context(), noteservice.NoteInput{Title: "Kubernetes Notes"}); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if _, err := svc.CreateNote(t.Context(), noteservice.NoteInput{Title: "Sourdough"}); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	w := doJSON(t, router, http.MethodGet, "/search?q=kubernetes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || len(resp.Results) != 1 {
		t.Fatalf("resp = %+v, want one hit", resp)
	}
	if resp.Results[0].Score == 0 {
		t.Error("scored search lost its score")
	}
}

func TestSearchQueryParams(t *testing.T) {
	svc, router := testEnv(t, "")
	note, err := svc.CreateNote(t.Context(), noteservice.NoteInput{
		Title: "Tagged", Tags: []string{"alpha"}, Favorite: true,
	})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if _, err := svc.CreateNote(t.Context(), noteservice.NoteInput{Title: "Plain"}); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	target := "/search?favorite=true&tags=" + note.Tags[0].ID
	w := doJSON(t, router, http.MethodGet, target, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Results[0].ID != note.ID {
		t.Errorf("resp = %+v, want just the tagged favorite", resp)
	}
}

func TestSearchBadParams(t *testing.T) {
	_, router := testEnv(t, "")
	for _, target := range []string{
		"/search?favorite=maybe",
		"/search?from=notadate",
		"/search?limit=abc",
		"/search?sort=magic",
	} {
		w := doJSON(t, router, http.MethodGet, target, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
		}
	}
}

func TestSuggestEndpoint(t *testing.T) {
	svc, router := testEnv(t, "")
	if _, err := svc.CreateNote(t.Context(), noteservice.NoteInput{Title: "Gardening"}); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	w := doJSON(t, router, http.MethodGet, "/suggest?q=gar", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SuggestResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Suggestions) != 1 || resp.Suggestions[0] != "Gardening" {
		t.Errorf("suggestions = %v", resp.Suggestions)
	}

	// Sub-minimum queries return an empty list, not null.
	w = doJSON(t, router, http.MethodGet, "/suggest?q=g", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); !bytes.Contains([]byte(body), []byte(`"suggestions":[]`)) {
		t.Errorf("body = %s, want empty suggestions array", body)
	}
}

func TestSearchStatsAndRebuild(t *testing.T) {
	svc, router := testEnv(t, "")
	if _, err := svc.CreateNote(t.Context(), noteservice.NoteInput{Title: "Only Note", Content: "some words here"}); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	w := doJSON(t, router, http.MethodPost, "/search/rebuild", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("rebuild status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/search/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}
	var stats search.Stats
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.Entries != 1 || stats.TotalTerms == 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestListCategories(t *testing.T) {
	svc, router := testEnv(t, "")
	if _, err := svc.CreateNote(t.Context(), noteservice.NoteInput{Title: "A", Category: "Work"}); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	w := doJSON(t, router, http.MethodGet, "/categories", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp CategoryListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Categories) != 1 || resp.Categories[0].Name != "Work" {
		t.Errorf("categories = %+v", resp.Categories)
	}
}

func TestAuthModes(t *testing.T) {
	_, router := testEnv(t, "sekrit")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
}
