package notestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/models"
)

// ListAll returns the full corpus in creation order, each note carrying its
// denormalized category name and tag list.
func (s *Store) ListAll(ctx context.Context) ([]models.Note, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT n.id, n.title, n.content, n.category_id, COALESCE(c.name, ''),
		       n.favorite, n.created_at, n.updated_at
		FROM notes n
		LEFT JOIN categories c ON c.id = n.category_id
		ORDER BY n.created_at, n.id
	`)
	if err != nil {
		return nil, fmt.Errorf("notestore: list all: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	byID := make(map[string]int)
	for rows.Next() {
		var n models.Note
		var categoryID sql.NullString
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &categoryID,
			&n.CategoryName, &n.Favorite, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("notestore: scan note: %w", err)
		}
		n.CategoryID = categoryID.String
		n.Tags = []models.Tag{}
		byID[n.ID] = len(notes)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notestore: list all: %w", err)
	}

	tagRows, err := s.conn.QueryContext(ctx, `
		SELECT nt.note_id, t.id, t.name
		FROM note_tags nt
		JOIN tags t ON t.id = nt.tag_id
		ORDER BY t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("notestore: list tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var noteID string
		var tag models.Tag
		if err := tagRows.Scan(&noteID, &tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("notestore: scan tag: %w", err)
		}
		if i, ok := byID[noteID]; ok {
			notes[i].Tags = append(notes[i].Tags, tag)
		}
	}
	return notes, tagRows.Err()
}

// Get returns a single note by id.
func (s *Store) Get(ctx context.Context, id string) (*models.Note, error) {
	var n models.Note
	var categoryID sql.NullString
	err := s.conn.QueryRowContext(ctx, `
		SELECT n.id, n.title, n.content, n.category_id, COALESCE(c.name, ''),
		       n.favorite, n.created_at, n.updated_at
		FROM notes n
		LEFT JOIN categories c ON c.id = n.category_id
		WHERE n.id = ?
	`, id).Scan(&n.ID, &n.Title, &n.Content, &categoryID,
		&n.CategoryName, &n.Favorite, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("notestore: get %s: %w", id, err)
	}
	n.CategoryID = categoryID.String

	n.Tags = []models.Tag{}
	tagRows, err := s.conn.QueryContext(ctx, `
		SELECT t.id, t.name FROM note_tags nt
		JOIN tags t ON t.id = nt.tag_id
		WHERE nt.note_id = ?
		ORDER BY t.name
	`, id)
	if err != nil {
		return nil, fmt.Errorf("notestore: get tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var tag models.Tag
		if err := tagRows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("notestore: scan tag: %w", err)
		}
		n.Tags = append(n.Tags, tag)
	}
	return &n, tagRows.Err()
}

// Create inserts a new note. A missing id is generated; timestamps are set
// to now. Tag entries must already exist (see EnsureTags).
func (s *Store) Create(ctx context.Context, n models.Note) (*models.Note, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("notestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notes (id, title, content, category_id, favorite, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Content, nullable(n.CategoryID), n.Favorite, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("notestore: insert note: %w", err)
	}
	if err := replaceNoteTags(ctx, tx, n.ID, n.Tags); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("notestore: commit: %w", err)
	}
	return s.Get(ctx, n.ID)
}

// Update rewrites a note's content and metadata and bumps updated_at.
func (s *Store) Update(ctx context.Context, n models.Note) (*models.Note, error) {
	n.UpdatedAt = time.Now().UTC()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("notestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?, category_id = ?, favorite = ?, updated_at = ?
		WHERE id = ?
	`, n.Title, n.Content, nullable(n.CategoryID), n.Favorite, n.UpdatedAt, n.ID)
	if err != nil {
		return nil, fmt.Errorf("notestore: update note: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, apperr.ErrNotFound
	}
	if err := replaceNoteTags(ctx, tx, n.ID, n.Tags); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("notestore: commit: %w", err)
	}
	return s.Get(ctx, n.ID)
}

// Delete removes a note. Deleting an unknown id returns apperr.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("notestore: delete %s: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// EnsureCategory returns the category with the given name, creating it if
// necessary.
func (s *Store) EnsureCategory(ctx context.Context, name, color string) (models.Category, error) {
	var c models.Category
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, name, color FROM categories WHERE name = ?`, name).
		Scan(&c.ID, &c.Name, &c.Color)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("notestore: lookup category: %w", err)
	}
	c = models.Category{ID: uuid.NewString(), Name: name, Color: color}
	if _, err := s.conn.ExecContext(ctx,
		`INSERT INTO categories (id, name, color) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.Color); err != nil {
		return c, fmt.Errorf("notestore: insert category: %w", err)
	}
	return c, nil
}

// EnsureTags returns tags for the given names in order, creating any that
// do not exist yet. Empty and repeated names are dropped.
func (s *Store) EnsureTags(ctx context.Context, names []string) ([]models.Tag, error) {
	out := make([]models.Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		var t models.Tag
		err := s.conn.QueryRowContext(ctx,
			`SELECT id, name FROM tags WHERE name = ?`, name).Scan(&t.ID, &t.Name)
		if errors.Is(err, sql.ErrNoRows) {
			t = models.Tag{ID: uuid.NewString(), Name: name}
			if _, err := s.conn.ExecContext(ctx,
				`INSERT INTO tags (id, name) VALUES (?, ?)`, t.ID, t.Name); err != nil {
				return nil, fmt.Errorf("notestore: insert tag: %w", err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("notestore: lookup tag: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, color FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("notestore: list categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("notestore: scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// replaceNoteTags rewrites the note_tags rows for a note.
func replaceNoteTags(ctx context.Context, tx *sql.Tx, noteID string, tags []models.Tag) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM note_tags WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("notestore: clear note tags: %w", err)
	}
	for _, t := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`,
			noteID, t.ID); err != nil {
			return fmt.Errorf("notestore: insert note tag: %w", err)
		}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
