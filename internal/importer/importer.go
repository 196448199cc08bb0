// Package importer ingests Markdown files dropped into an inbox directory
// and turns them into notes. Files are consumed: a successful import
// removes the source file.
package importer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/noteservice"
)

// Importer watches an inbox directory for Markdown files.
type Importer struct {
	svc    *noteservice.Service
	dir    string
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{} // checksums handled this session
}

// New creates an importer over the given inbox directory.
func New(svc *noteservice.Service, dir string, logger *slog.Logger) *Importer {
	return &Importer{
		svc:    svc,
		dir:    dir,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Scan imports every .md file currently in the inbox as one bulk
// operation: all notes are created first, then the index is refreshed with
// a single rebuild. Returns the number of notes created.
func (im *Importer) Scan(ctx context.Context) (int, error) {
	var paths []string
	err := filepath.WalkDir(im.dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return 0, err
	}

	var inputs []noteservice.NoteInput
	var imported []string
	for _, p := range paths {
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			im.logger.Warn("importer: read failed",
				slog.String("path", p), slog.String("error", readErr.Error()))
			continue
		}
		if !im.markSeen(data) {
			continue
		}
		inputs = append(inputs, ParseNote(data))
		imported = append(imported, p)
	}

	if len(inputs) == 0 {
		return 0, nil
	}
	n, err := im.svc.BulkImport(ctx, inputs)
	if err != nil {
		return n, err
	}
	for _, p := range imported {
		im.consume(p)
	}
	im.logger.Info("importer: scan complete", slog.Int("imported", n))
	return n, nil
}

// Watch processes inbox file events until ctx is cancelled. Files created
// or rewritten in the inbox are imported individually.
func (im *Importer) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(im.dir); err != nil {
		return err
	}
	im.logger.Info("importer: watching inbox", slog.String("dir", im.dir))

	for {
		select {
		case <-ctx.Done():
			im.logger.Info("importer: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			im.importFile(ctx, ev.Name)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			im.logger.Error("importer: watch error", slog.String("error", watchErr.Error()))
		}
	}
}

// importFile imports a single dropped file via a per-note index upsert.
func (im *Importer) importFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		im.logger.Warn("importer: read failed",
			slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	// Editors and copies fire several events per file; the checksum
	// collapses them into one import.
	if !im.markSeen(data) {
		return
	}

	note, err := im.svc.CreateNote(ctx, ParseNote(data))
	if err != nil {
		im.logger.Warn("importer: create failed",
			slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	im.consume(path)
	im.logger.Info("importer: imported",
		slog.String("path", path), slog.String("note_id", note.ID))
}

// markSeen records the content checksum, returning false if this exact
// content was already handled.
func (im *Importer) markSeen(data []byte) bool {
	sum := checksum.Sum(data)
	im.mu.Lock()
	defer im.mu.Unlock()
	if _, dup := im.seen[sum]; dup {
		return false
	}
	im.seen[sum] = struct{}{}
	return true
}

func (im *Importer) consume(path string) {
	if err := os.Remove(path); err != nil {
		im.logger.Warn("importer: remove failed",
			slog.String("path", path), slog.String("error", err.Error()))
	}
}
