package entry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/metadata"
)

func builtinConverters() *metadata.Converters {
	r := metadata.NewConverters()
	metadata.RegisterBuiltins(r)
	return r
}

func TestNew_ReadsFileAndDerivesPath(t *testing.T) {
	base := filepath.Join(t.TempDir(), "Entries")
	file := filepath.Join(base, "2024", "01", "02", "hello.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	require.NoError(t, os.WriteFile(file, []byte("# Hello\n"), 0o644))

	e, err := New(base, file)
	require.NoError(t, err)

	assert.Equal(t, "2024/01/02/hello", e.Path())
	assert.Equal(t, "hello", e.Title())
	assert.Equal(t, file, e.FilePath())
	assert.Equal(t, ".md", e.Extension())
	assert.Equal(t, "# Hello\n", e.Content)
	assert.NotNil(t, e.Tags())
	assert.Empty(t, e.Tags())
	assert.False(t, e.ModifiedAt.IsZero())
	assert.False(t, e.CreatedAt.IsZero())
}

func TestNew_MissingFileIsFilesystemError(t *testing.T) {
	_, err := New(t.TempDir(), filepath.Join(t.TempDir(), "nope.md"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSitePath(t *testing.T) {
	tests := []struct {
		base, file, want string
	}{
		{"/srv/Entries", "/srv/Entries/post.txt", "post"},
		{"/srv/Entries", "/srv/Entries/a/b/post.md", "a/b/post"},
		{"/srv/Entries/", "/srv/Entries/a/post.tar.md", "a/post.tar"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, SitePath(tt.base, tt.file))
		})
	}
}

func TestAccessorsAreViewsOverMetadata(t *testing.T) {
	e := NewFromContent("/b", "/b/x.md", "")
	e.SetTitle("T")
	assert.Equal(t, "T", e.Metadata.GetString("title"))

	e.Metadata.Set("PATH", metadata.String("y"))
	assert.Equal(t, "y", e.Path())
}

func TestParseMetadata(t *testing.T) {
	content := "---\nTitle: Hello World\ntags: go web\npublished: false\nCreatedAt: 2023-05-06\nauthor:  someone \nnocolon\n---\nBody text\n"
	e := NewFromContent("/b", "/b/post.md", content)

	found, err := e.ParseMetadata(builtinConverters())
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "Body text\n", e.Content)
	assert.Equal(t, "Hello World", e.Title())
	assert.Equal(t, []string{"go", "web"}, e.Tags())
	assert.Equal(t, "someone", e.Metadata.GetString("Author"))
	assert.False(t, e.Metadata.Has("nocolon"))

	pub, ok := e.Metadata.Get("Published")
	require.True(t, ok)
	assert.True(t, metadata.Bool(false).Equal(pub))

	created, ok := e.Metadata.Get("createdat")
	require.True(t, ok)
	tm, ok := created.AsTime()
	require.True(t, ok)
	assert.True(t, time.Date(2023, 5, 6, 0, 0, 0, 0, time.Local).Equal(tm))
}

func TestParseMetadata_NoBlockLeavesContent(t *testing.T) {
	for _, content := range []string{"", "   \n", "Just text", "---\nTitle: x\nno close"} {
		e := NewFromContent("/b", "/b/post.md", content)
		found, err := e.ParseMetadata(builtinConverters())
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, content, e.Content)
		assert.Equal(t, "post", e.Title())
	}
}

func TestParseMetadata_UnparsableDateStoresNone(t *testing.T) {
	e := NewFromContent("/b", "/b/post.md", "---\nModifiedAt: yesterday\n---\n")
	_, err := e.ParseMetadata(builtinConverters())
	require.NoError(t, err)

	v, ok := e.Metadata.Get("ModifiedAt")
	require.True(t, ok)
	assert.True(t, v.IsNone())
}

func TestParseMetadata_ConverterErrorIsConfigError(t *testing.T) {
	conv := builtinConverters()
	boom := errors.New("boom")
	conv.MustSet("Rating", func(string) (metadata.Value, error) { return metadata.None(), boom })

	e := NewFromContent("/b", "/b/post.md", "---\nTitle: x\nrating: 5\n---\nbody")
	_, err := e.ParseMetadata(conv)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.ErrorIs(t, err, ErrConvert)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "post", e.Title(), "entry untouched on failure")
}
