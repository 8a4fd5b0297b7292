// Package gitmeta derives entry modification times from git history.
package gitmeta

import (
	stderrors "errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/flatsite/internal/entry"
	"git.home.luguber.info/inful/flatsite/internal/logfields"
	"git.home.luguber.info/inful/flatsite/internal/metadata"
	"git.home.luguber.info/inful/flatsite/internal/postprocess"
)

// StepName is the post-processor name under which the step is registered.
const StepName = "Git/ModifiedAt"

// History answers last-commit times for files inside one work tree.
type History struct {
	repo     *git.Repository
	workTree string

	mu    sync.Mutex
	times map[string]time.Time
}

// Open finds the repository containing root, searching parent directories.
// It returns nil and no error when root is not inside a repository.
func Open(root string) (*History, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if stderrors.Is(err, git.ErrRepositoryNotExists) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no files to date.
		return nil, nil
	}
	workTree, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		workTree = wt.Filesystem.Root()
	}
	return &History{repo: repo, workTree: workTree, times: make(map[string]time.Time)}, nil
}

// LastCommit returns the committer time of the newest commit touching path.
func (h *History) LastCommit(path string) (time.Time, bool) {
	rel, ok := h.relative(path)
	if !ok {
		return time.Time{}, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.times[rel]; ok {
		return t, !t.IsZero()
	}

	t := h.lookup(rel)
	h.times[rel] = t
	return t, !t.IsZero()
}

func (h *History) lookup(rel string) time.Time {
	iter, err := h.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		return time.Time{}
	}
	defer iter.Close()
	c, err := iter.Next()
	if err != nil {
		if !stderrors.Is(err, io.EOF) {
			slog.Debug("Git log failed", logfields.Path(rel), logfields.Error(err))
		}
		return time.Time{}
	}
	return c.Committer.When
}

func (h *History) relative(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(h.workTree, abs)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// Step sets ModifiedAt from git history for entries whose metadata did not
// supply one. A nil History yields a step that changes nothing.
func Step(h *History) postprocess.Step {
	return func(entries []*entry.Entry) []*entry.Entry {
		if h == nil {
			return entries
		}
		for _, e := range entries {
			if v, ok := e.Metadata.Get(metadata.KeyModifiedAt); ok && v.Kind() == metadata.KindTime {
				continue
			}
			if t, ok := h.LastCommit(e.FilePath()); ok {
				e.ModifiedAt = t
			}
		}
		return entries
	}
}

// Register opens the repository around root and inserts the step ahead of Order.
// Outside a repository the step is still registered and does nothing.
func Register(r *postprocess.Registry, root string) error {
	h, err := Open(root)
	if err != nil {
		return err
	}
	if h == nil {
		slog.Debug("Content root is not in a git repository", logfields.Root(root))
	}
	return r.InsertBefore(postprocess.OrderStep, StepName, Step(h))
}
