package postprocess

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/flatsite/internal/entry"
	"git.home.luguber.info/inful/flatsite/internal/metadata"
)

// MaxSummaryRunes bounds the derived summary length, ellipsis included.
const MaxSummaryRunes = 280

// Summary stores the first paragraph of the content as plain text, unless the
// front matter already supplied a Summary.
func Summary(entries []*entry.Entry) []*entry.Entry {
	for _, e := range entries {
		if e.Metadata.Has(metadata.KeySummary) {
			continue
		}
		if s := Summarize(e.Content); s != "" {
			e.Metadata.Set(metadata.KeySummary, metadata.String(s))
		}
	}
	return entries
}

// Summarize extracts the text of the first non-empty <p> element, or of the whole
// document when there is none, with whitespace collapsed.
func Summarize(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}
	text := ""
	if p := firstParagraph(doc); p != nil {
		text = collapse(textOf(p))
	}
	if text == "" {
		text = collapse(textOf(doc))
	}
	return truncate(text, MaxSummaryRunes)
}

func firstParagraph(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "p" && strings.TrimSpace(textOf(n)) != "" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if p := firstParagraph(c); p != nil {
			return p
		}
	}
	return nil
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true, "blockquote": true, "section": true, "article": true,
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteByte(' ')
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
