// Package importer turns Markdown files dropped into an inbox directory
// into ideas. Files are upserted under a slug derived from the filename,
// so dropping a revised copy of the same file updates the existing idea.
package importer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ansuz/internal/ideaservice"
	"github.com/starford/ansuz/internal/slug"
	"github.com/starford/ansuz/internal/store"
)

// Importer watches an inbox directory and imports dropped files.
type Importer struct {
	svc    *ideaservice.Service
	logger *slog.Logger
	// keep leaves imported files in place instead of removing them.
	keep bool
}

func New(svc *ideaservice.Service, logger *slog.Logger, keep bool) *Importer {
	return &Importer{svc: svc, logger: logger, keep: keep}
}

// ImportFile imports a single file as an idea and, unless keep is set,
// removes it afterwards.
func (im *Importer) ImportFile(ctx context.Context, path string) (store.CreateResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.CreateResult{}, err
	}

	doc := parseDocument(data)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if doc.Title == "" {
		doc.Title = stem
	}

	// A stem of only punctuation cleans to empty; pin it to a fixed
	// literal so re-dropping the file still updates the same row.
	fileSlug := slug.Stem(stem)
	if fileSlug == "" {
		fileSlug = "doc"
	}

	res, err := im.svc.Create(ctx, store.CreateIdea{
		Title:    doc.Title,
		Content:  doc.Body,
		Category: doc.Category,
		Tags:     doc.Tags,
		Source:   "inbox",
		Slug:     fileSlug,
	})
	if err != nil {
		return store.CreateResult{}, err
	}

	if !im.keep {
		if rmErr := os.Remove(path); rmErr != nil {
			im.logger.Warn("importer: remove failed",
				slog.String("path", path),
				slog.String("error", rmErr.Error()))
		}
	}
	return res, nil
}

// Watch imports any files already in dir, then starts an fsnotify watcher
// and processes drops until ctx is cancelled. The directory is created if
// it does not exist.
func (im *Importer) Watch(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	im.sweep(ctx, dir)

	im.logger.Info("importer: started", slog.String("dir", dir))

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
			if !importable(ev.Name) {
				continue
			}
			im.importOne(ctx, ev.Name)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			im.logger.Error("importer: error", slog.String("error", watchErr.Error()))
		}
	}
}

// sweep imports files that were already in the inbox at startup.
func (im *Importer) sweep(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		im.logger.Warn("importer: sweep failed", slog.String("error", err.Error()))
		return
	}
	for _, e := range entries {
		if e.IsDir() || !importable(e.Name()) {
			continue
		}
		im.importOne(ctx, filepath.Join(dir, e.Name()))
	}
}

func (im *Importer) importOne(ctx context.Context, path string) {
	res, err := im.ImportFile(ctx, path)
	if err != nil {
		// A Write event often trails the Create for the same drop; by
		// then the file has already been imported and removed.
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		im.logger.Warn("importer: import failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}
	kind := "created"
	if res.Updated {
		kind = "updated"
	}
	im.logger.Info("importer: imported",
		slog.String("path", path),
		slog.Int64("id", res.ID),
		slog.String("op", kind))
}

func importable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt", ".markdown":
		return true
	}
	return false
}
