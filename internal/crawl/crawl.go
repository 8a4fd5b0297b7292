// Package crawl enumerates content roots and builds entries from the files found.
package crawl

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/flatsite/internal/entry"
	ferrors "git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/format"
	"git.home.luguber.info/inful/flatsite/internal/logfields"
	"git.home.luguber.info/inful/flatsite/internal/registry"
)

// DefaultWorkers bounds entry construction when the source does not say otherwise.
const DefaultWorkers = 8

// EntriesDir is the directory below the root scanned by the builtin crawler.
const EntriesDir = "Entries"

// Source is what a crawler needs from the engine.
type Source interface {
	RootDirectory() string
	Formatters() *format.Registry
	// CreateEntry constructs, parses and formats the entry for path.
	CreateEntry(baseDir, path string) (*entry.Entry, error)
	Workers() int
}

// Crawler produces entries for a source. Order of the result is not significant.
type Crawler func(ctx context.Context, src Source) ([]*entry.Entry, error)

// Registry maps crawler names to crawlers.
type Registry = registry.Registry[Crawler]

// NewRegistry returns an empty crawler registry.
func NewRegistry() *Registry {
	return registry.New[Crawler]()
}

// RegisterBuiltins adds the Entries crawler.
func RegisterBuiltins(r *Registry) {
	r.MustSet("Entries", Entries)
}

// Entries loads every formattable file below <root>/Entries.
func Entries(ctx context.Context, src Source) ([]*entry.Entry, error) {
	return LoadEntries(ctx, src, filepath.Join(src.RootDirectory(), EntriesDir))
}

// LoadEntries walks baseDir recursively and builds an entry for every file whose
// extension has a formatter. A missing baseDir yields no entries. Construction runs
// on up to src.Workers() goroutines and stops at the first error.
func LoadEntries(ctx context.Context, src Source, baseDir string) ([]*entry.Entry, error) {
	start := time.Now()
	files, err := discover(src.Formatters(), baseDir)
	if err != nil {
		return nil, err
	}

	workers := src.Workers()
	if workers < 1 {
		workers = DefaultWorkers
	}
	out := make([]*entry.Entry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := src.CreateEntry(baseDir, path)
			if err != nil {
				return err
			}
			out[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("Loaded entries",
		logfields.Path(baseDir),
		logfields.Count(len(out)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return out, nil
}

func discover(formatters *format.Registry, baseDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == baseDir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if formatters.Has(filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "walk content directory").
			WithContext("path", baseDir).
			Build()
	}
	return files, nil
}
