// Package format holds the extension → formatter registry and the builtin text
// and Markdown formatters.
package format

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/flatsite/internal/entry"
	"git.home.luguber.info/inful/flatsite/internal/markdown"
	"git.home.luguber.info/inful/flatsite/internal/metadata"
	"git.home.luguber.info/inful/flatsite/internal/registry"
)

// Formatter transforms an entry's content in place. It is invoked exactly once per
// entry, after metadata parsing.
type Formatter interface {
	Process(e *entry.Entry) error
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(e *entry.Entry) error

// Process calls f(e).
func (f FormatterFunc) Process(e *entry.Entry) error { return f(e) }

// Registry maps a file extension, dot included, to its formatter.
type Registry = registry.Registry[Formatter]

// NewRegistry returns an empty formatter registry.
func NewRegistry() *Registry {
	return registry.New[Formatter]()
}

// RegisterBuiltins adds the .txt and .md formatters.
func RegisterBuiltins(r *Registry, md markdown.Options) {
	r.MustSet(".txt", Text{})
	r.MustSet(".md", NewMarkdown(md))
}

// Text handles plain text entries. When the title is still the file name, the
// first line of the content becomes the title and the rest the body.
type Text struct{}

// Process splits a leading title line off the content.
func (Text) Process(e *entry.Entry) error {
	if e.Title() != filepath.Base(filepath.FromSlash(e.Path())) {
		return nil
	}
	i := strings.IndexByte(e.Content, '\n')
	if i < 0 {
		return nil
	}
	e.SetTitle(strings.TrimSpace(e.Content[:i]))
	e.Content = e.Content[i:]
	return nil
}

// Markdown renders the content to HTML.
type Markdown struct {
	r *markdown.Renderer
}

// NewMarkdown creates a Markdown formatter rendering with opts.
func NewMarkdown(opts markdown.Options) *Markdown {
	return &Markdown{r: markdown.New(opts)}
}

// Process replaces the content with its HTML rendering and records the outgoing links.
func (m *Markdown) Process(e *entry.Entry) error {
	html, links, err := m.r.Render([]byte(e.Content))
	if err != nil {
		return err
	}
	e.Content = html
	if dests := markdown.Destinations(links); len(dests) > 0 && !e.Metadata.Has(metadata.KeyLinks) {
		e.Metadata.Set(metadata.KeyLinks, metadata.Strings(dests))
	}
	return nil
}
