package crawl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/flatsite/internal/entry"
	ferrors "git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/format"
	"git.home.luguber.info/inful/flatsite/internal/markdown"
)

type fakeSource struct {
	root       string
	formatters *format.Registry
	workers    int
	created    atomic.Int32
	fail       string
}

func newFakeSource(root string) *fakeSource {
	r := format.NewRegistry()
	format.RegisterBuiltins(r, markdown.Options{})
	return &fakeSource{root: root, formatters: r, workers: 2}
}

func (s *fakeSource) RootDirectory() string           { return s.root }
func (s *fakeSource) Formatters() *format.Registry    { return s.formatters }
func (s *fakeSource) Workers() int                    { return s.workers }
func (s *fakeSource) CreateEntry(base, path string) (*entry.Entry, error) {
	s.created.Add(1)
	if s.fail != "" && filepath.Base(path) == s.fail {
		return nil, errors.New("cannot build " + s.fail)
	}
	return entry.New(base, path)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func paths(entries []*entry.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path())
	}
	sort.Strings(out)
	return out
}

func TestEntries_LoadsFormattableFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Entries", "a.txt"), "A")
	writeFile(t, filepath.Join(root, "Entries", "2024", "01", "b.md"), "B")
	writeFile(t, filepath.Join(root, "Entries", "image.png"), "png")
	writeFile(t, filepath.Join(root, "outside.md"), "ignored")

	src := newFakeSource(root)
	entries, err := Entries(t.Context(), src)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024/01/b", "a"}, paths(entries))
	assert.Equal(t, int32(2), src.created.Load())
}

func TestEntries_MissingDirectoryIsEmpty(t *testing.T) {
	entries, err := Entries(t.Context(), newFakeSource(t.TempDir()))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadEntries_FirstErrorAborts(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "bad.txt", "c.txt"} {
		writeFile(t, filepath.Join(root, "Entries", name), name)
	}
	src := newFakeSource(root)
	src.fail = "bad.txt"
	src.workers = 0

	entries, err := Entries(t.Context(), src)
	require.Error(t, err)
	assert.Nil(t, entries)
	assert.Contains(t, err.Error(), "cannot build bad.txt")
}

func TestLoadEntries_UnreadableRootIsFilesystemError(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "Entries")
	writeFile(t, file, "not a directory")

	src := newFakeSource(root)
	_, err := LoadEntries(t.Context(), src, filepath.Join(file, "sub"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestLoadEntries_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Entries", "a.txt"), "A")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := Entries(ctx, newFakeSource(root))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegisterBuiltins(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)
	assert.Equal(t, []string{"Entries"}, r.Keys())
}
