package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/flatsite/internal/config"
	"git.home.luguber.info/inful/flatsite/internal/eventstore"
	"git.home.luguber.info/inful/flatsite/internal/export"
	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/server"
)

const testConfig = `site:
  name: Test blog
  entries_per_page: 2
history:
  path: history.db
`

// newProject writes a config and three entries into a temp directory.
func newProject(t *testing.T) *CLI {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "flatsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	for rel, content := range map[string]string{
		"2024/01/15/hello.md":  "---\nTitle: Hello\nTags: go\n---\nHello\n",
		"2024/02/01/second.md": "---\nTags: go web\n---\nSecond\n",
		"2024/03/01/third.md":  "Third\n",
	} {
		p := filepath.Join(dir, config.DefaultDataDirectory, "Entries", filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return &CLI{Config: path}
}

func TestDispatchCmd(t *testing.T) {
	cli := newProject(t)
	var out bytes.Buffer

	cmd := &DispatchCmd{Path: "/2024/01/15/hello", Page: 1}
	require.NoError(t, cmd.Run(&Global{Out: &out}, cli))

	var resp server.PageResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "Test blog", resp.Site.Name)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "Hello", resp.Entries[0].Title)
	assert.Equal(t, "Hello", resp.Title)
}

func TestDispatchCmd_Paging(t *testing.T) {
	cli := newProject(t)
	var out bytes.Buffer

	require.NoError(t, (&DispatchCmd{Path: "/", Page: 2}).Run(&Global{Out: &out}, cli))

	var resp server.PageResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, 2, resp.Paging.Page)
	assert.Equal(t, 2, resp.Paging.TotalPages)
	assert.Len(t, resp.Entries, 1)
}

func TestDispatchCmd_RecordsHistory(t *testing.T) {
	cli := newProject(t)
	require.NoError(t, (&DispatchCmd{Path: "/"}).Run(&Global{Out: &bytes.Buffer{}}, cli))

	store, err := eventstore.NewSQLiteStore(filepath.Join(filepath.Dir(cli.Config), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg, err := config.Load(cli.Config)
	require.NoError(t, err)
	events, err := store.ByRoot(t.Context(), cfg.Root(), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, events)
}

func TestDispatchCmd_MissingConfig(t *testing.T) {
	cli := &CLI{Config: filepath.Join(t.TempDir(), "missing.yaml")}
	err := (&DispatchCmd{Path: "/"}).Run(&Global{Out: &bytes.Buffer{}}, cli)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestIndexCmd(t *testing.T) {
	cli := newProject(t)

	t.Run("names", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, (&IndexCmd{JSON: true}).Run(&Global{Out: &out}, cli))
		var names []string
		require.NoError(t, json.Unmarshal(out.Bytes(), &names))
		assert.Contains(t, names, "Tags")
		assert.Contains(t, names, "Path")
	})

	t.Run("keys", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, (&IndexCmd{Name: "tags", JSON: true}).Run(&Global{Out: &out}, cli))
		var resp server.IndexResponse
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
		counts := map[string]int{}
		for _, k := range resp.Keys {
			counts[k.Key] = k.Count
		}
		assert.Equal(t, map[string]int{"go": 2, "web": 1}, counts)
	})

	t.Run("table", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, (&IndexCmd{Name: "Tags"}).Run(&Global{Out: &out}, cli))
		assert.Contains(t, out.String(), "go")
	})

	t.Run("unknown", func(t *testing.T) {
		err := (&IndexCmd{Name: "Nope"}).Run(&Global{Out: &bytes.Buffer{}}, cli)
		require.Error(t, err)
		assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	})
}

func TestExportCmd(t *testing.T) {
	cli := newProject(t)
	out := filepath.Join(t.TempDir(), "public")
	var buf bytes.Buffer

	require.NoError(t, (&ExportCmd{Output: out}).Run(&Global{Out: &buf}, cli))
	assert.Contains(t, buf.String(), "Exported")
	assert.FileExists(t, filepath.Join(out, export.DocumentName))
	assert.FileExists(t, filepath.Join(out, "Tag", "web", export.DocumentName))
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()
	cli := &CLI{Config: filepath.Join(dir, "flatsite.yaml")}
	var out bytes.Buffer

	require.NoError(t, (&InitCmd{}).Run(&Global{Out: &out}, cli))
	assert.Contains(t, out.String(), "initialized successfully")
	assert.FileExists(t, cli.Config)
	assert.DirExists(t, filepath.Join(dir, config.DefaultDataDirectory, "Entries"))

	err := (&InitCmd{}).Run(&Global{Out: &out}, cli)
	require.Error(t, err)
	require.NoError(t, (&InitCmd{Force: true}).Run(&Global{Out: &out}, cli))
}

func TestNewLogger(t *testing.T) {
	assert.True(t, newLogger(config.LoggingConfig{Level: config.LogLevelDebug}, false).Enabled(t.Context(), -4))
	assert.False(t, newLogger(config.LoggingConfig{Level: config.LogLevelWarn}, false).Enabled(t.Context(), 0))
	assert.True(t, newLogger(config.LoggingConfig{Level: config.LogLevelError}, true).Enabled(t.Context(), -4))
}
