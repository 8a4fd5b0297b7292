package site

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/flatsite/internal/config"
	"git.home.luguber.info/inful/flatsite/internal/crawl"
	"git.home.luguber.info/inful/flatsite/internal/engine"
	"git.home.luguber.info/inful/flatsite/internal/enginecache"
	"git.home.luguber.info/inful/flatsite/internal/entry"
	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/index"
	"git.home.luguber.info/inful/flatsite/internal/route"
)

func newSite(t *testing.T, posts int) *Site {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, crawl.EntriesDir, "2024", "01")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for i := range posts {
		name := filepath.Join(dir, string(rune('a'+i))+".md")
		require.NoError(t, os.WriteFile(name, []byte("---\nTags: go\n---\nBody\n"), 0o644))
	}
	s := New("/blog/", root, enginecache.New(), nil)
	s.EntriesPerPage = 2
	return s
}

func TestNew_Defaults(t *testing.T) {
	s := New("/", "/srv", enginecache.New(), nil)
	assert.Equal(t, DefaultName, s.Name)
	assert.Equal(t, DefaultTemplates, s.Templates)
	assert.Equal(t, DefaultEntriesPerPage, s.EntriesPerPage)
	assert.Empty(t, s.SiteRoot)
}

func TestFromConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flatsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site:\n  name: Notes\n  site_root: /notes\n  entries_per_page: 3\nengine:\n  disable_cache: true\n"), 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)

	s := FromConfig(cfg, enginecache.New(), nil)
	assert.Equal(t, "Notes", s.Name)
	assert.Equal(t, "/notes", s.SiteRoot)
	assert.Equal(t, 3, s.EntriesPerPage)
	assert.True(t, s.DisableCache)
	assert.Equal(t, path, s.EntryPoint)
	assert.Equal(t, filepath.Join(dir, config.DefaultDataDirectory), s.DataDirectory)
}

func TestRelativePath(t *testing.T) {
	s := New("/blog", "/srv", enginecache.New(), nil)
	tests := map[string]string{
		"/blog":        "/",
		"/blog/":       "/",
		"/blog/Tag/go": "/Tag/go",
		"/blogger/x":   "/blogger/x",
		"/other":       "/other",
		"":             "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, s.RelativePath(in), in)
	}
	assert.Equal(t, "/blog/2024/01/a", s.URL("2024/01/a"))
}

func TestPage_ListingIsPaged(t *testing.T) {
	s := newSite(t, 5)

	vm, err := s.Page(t.Context(), "/blog/", url.Values{"page": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, route.ViewEntries, vm.Template)
	assert.Equal(t, s.Name, vm.Title)
	assert.Len(t, vm.Entries, 5)
	assert.Equal(t, 2, vm.Paging.CurrentPage)
	assert.Equal(t, 3, vm.Paging.TotalPages())
	assert.Len(t, vm.Paging.Items(), 2)
	assert.True(t, vm.Paging.HasNext())
	assert.True(t, vm.Paging.HasPrevious())
	assert.Equal(t, []string{"go"}, vm.Indexes(index.TagsIndex).Keys())
}

func TestPage_SingleEntryAndTag(t *testing.T) {
	s := newSite(t, 3)

	vm, err := s.Page(t.Context(), "/blog/2024/01/b", nil)
	require.NoError(t, err)
	assert.Equal(t, route.ViewEntry, vm.Result.ViewName)
	assert.Equal(t, "b", vm.Title)

	vm, err = s.Page(t.Context(), "/blog/Tag/go", nil)
	require.NoError(t, err)
	assert.Equal(t, "Tag: go", vm.Title)
	assert.Equal(t, route.FilteredView{FilteredBy: "Tag", Value: "go"}, vm.Data)

	vm, err = s.Page(t.Context(), "/blog/Feed", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, vm.Paging.TotalPages(), "feeds are not paged")
}

func TestPage_HookAndTemplates(t *testing.T) {
	s := newSite(t, 1)
	s.EngineCreated = func(e *engine.Engine) error {
		return e.ViewSelectors().Set("Custom", func(entries []*entry.Entry) string {
			if len(entries) == 1 {
				return "Single"
			}
			return ""
		})
	}

	vm, err := s.Page(t.Context(), "/2024/01/a", nil)
	require.NoError(t, err)
	assert.Equal(t, "Single", vm.Template)
}

func TestPage_NoRoute(t *testing.T) {
	s := newSite(t, 1)
	s.EngineCreated = func(e *engine.Engine) error {
		if err := e.Routes().Delete(route.PathPattern); err != nil {
			return err
		}
		return e.Routes().Delete(route.DefaultPattern)
	}

	_, err := s.Page(t.Context(), "/blog/nothing/here", nil)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryNotFound, errors.GetCategory(err))
	require.NoError(t, s.Refresh(t.Context()))
}
