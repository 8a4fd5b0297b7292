package route

import (
	"strings"

	"git.home.luguber.info/inful/flatsite/internal/index"
)

// Patterns of the builtin routes, in registration order.
const (
	TagPattern     = `Tag/(.*)`
	FeedPattern    = `Feed`
	PathPattern    = `(.+)`
	DefaultPattern = ``
)

// RegisterBuiltins adds the builtin routes. Routes added later by the embedding
// application land after the catch-all; use InsertBefore(PathPattern, ...) to
// take precedence.
func RegisterBuiltins(r *Registry) {
	r.MustSet(TagPattern, Tag)
	r.MustSet(FeedPattern, Feed)
	r.MustSet(PathPattern, ByPath)
	r.MustSet(DefaultPattern, All)
}

// Tag lists the entries carrying the tag in group 1.
func Tag(m Match, src Source) *Result {
	tag := m.Group(1)
	return &Result{
		ViewName: ViewEntries,
		Entries:  src.Index(index.TagsIndex).Get(tag),
		ViewData: FilteredView{FilteredBy: "Tag", Value: tag},
	}
}

// Feed returns every entry for syndication.
func Feed(_ Match, src Source) *Result {
	return &Result{ViewName: ViewFeed, Entries: src.Entries()}
}

// ByPath resolves group 1 against the Path index. An exact single match is an
// Entry view; anything else is an Entries listing, possibly empty.
func ByPath(m Match, src Source) *Result {
	path := strings.TrimRight(m.Group(1), "/")
	entries := src.Index(index.PathIndex).Get(path)
	if len(entries) == 1 && entries[0].Path() == path {
		return &Result{ViewName: ViewEntry, Entries: entries}
	}
	return &Result{ViewName: ViewEntries, Entries: entries}
}

// All lists every entry.
func All(_ Match, src Source) *Result {
	return &Result{ViewName: ViewEntries, Entries: src.Entries()}
}
