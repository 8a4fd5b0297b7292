package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/flatsite/internal/entry"
	ferrors "git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/markdown"
	"git.home.luguber.info/inful/flatsite/internal/metadata"
)

func builtins() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r, markdown.Options{})
	return r
}

func TestText_FirstLineBecomesTitle(t *testing.T) {
	e := entry.NewFromContent("/b", "/b/2020/note.txt", "  My Title \nline one\nline two")
	require.NoError(t, Apply(builtins(), e))

	assert.Equal(t, "My Title", e.Title())
	assert.Equal(t, "\nline one\nline two", e.Content)
}

func TestText_ExplicitTitleKeepsContent(t *testing.T) {
	e := entry.NewFromContent("/b", "/b/note.txt", "first\nsecond")
	e.SetTitle("From front matter")
	require.NoError(t, Apply(builtins(), e))

	assert.Equal(t, "From front matter", e.Title())
	assert.Equal(t, "first\nsecond", e.Content)
}

func TestText_SingleLineUnchanged(t *testing.T) {
	e := entry.NewFromContent("/b", "/b/note.txt", "only line")
	require.NoError(t, Apply(builtins(), e))

	assert.Equal(t, "note", e.Title())
	assert.Equal(t, "only line", e.Content)
}

func TestMarkdown_RendersAndStoresLinks(t *testing.T) {
	e := entry.NewFromContent("/b", "/b/post.MD", "# Hi\n\nSee [other](/2020/other).\n")
	require.NoError(t, Apply(builtins(), e))

	assert.Contains(t, e.Content, `<h1 id="hi">Hi</h1>`)
	assert.Equal(t, []string{"/2020/other"}, e.Metadata.GetStrings(metadata.KeyLinks))
}

func TestApply_NoFormatter(t *testing.T) {
	e := entry.NewFromContent("/b", "/b/post.rst", "x")
	err := Apply(builtins(), e)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoFormatter)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestApply_FormatterFailure(t *testing.T) {
	r := builtins()
	boom := errors.New("boom")
	r.MustSet(".txt", FormatterFunc(func(*entry.Entry) error { return boom }))

	err := Apply(r, entry.NewFromContent("/b", "/b/a.txt", "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFormat))
}

func TestRegistry_ExtensionIsCaseInsensitive(t *testing.T) {
	r := builtins()
	_, ok := r.Get(".TXT")
	assert.True(t, ok)
}
