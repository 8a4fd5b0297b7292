// Package markdown renders entry bodies to HTML with goldmark and collects the
// links found while doing so.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "github"

// Options controls rendering.
type Options struct {
	// ServerSideHighlight colors fenced code blocks at render time. When false the
	// blocks keep a language-* class for client-side highlighting.
	ServerSideHighlight bool
	HighlightStyle      string
}

// Renderer is a configured goldmark instance. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a renderer with GFM, automatic heading IDs and raw HTML passthrough.
func New(opts Options) *Renderer {
	exts := []goldmark.Extender{extension.GFM}
	if opts.ServerSideHighlight {
		style := opts.HighlightStyle
		if style == "" {
			style = DefaultHighlightStyle
		}
		exts = append(exts, highlighting.NewHighlighting(highlighting.WithStyle(style)))
	}
	return &Renderer{md: goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

// Render converts src to HTML and returns the links of the document.
func (r *Renderer) Render(src []byte) (string, []Link, error) {
	root := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))
	links := collectLinks(root, src)

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, root); err != nil {
		return "", nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), links, nil
}

func collectLinks(root gmast.Node, src []byte) []Link {
	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(src))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			// Reference-style links arrive here already resolved.
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})
	return links
}
