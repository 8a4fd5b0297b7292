package index

import (
	"strings"

	"git.home.luguber.info/inful/flatsite/internal/entry"
	"git.home.luguber.info/inful/flatsite/internal/metadata"
	"git.home.luguber.info/inful/flatsite/internal/registry"
)

// Indexer derives a lookup from the ordered entry collection.
type Indexer func(entries []*entry.Entry) *Lookup

// Registry maps index names (case-insensitive) to indexers.
type Registry = registry.Registry[Indexer]

// NewRegistry returns an empty indexer registry.
func NewRegistry() *Registry {
	return registry.New[Indexer]()
}

// Names of the builtin indexes.
const (
	TagsIndex     = "Tags"
	CategoryIndex = "Category"
	TitleIndex    = "Title"
	PathIndex     = "Path"
	ByMonthIndex  = "ByMonth"
	LinksIndex    = "Links"
)

// ByMonthLayout formats the ByMonth keys.
const ByMonthLayout = "2006/01"

// RegisterBuiltins adds the builtin indexers.
func RegisterBuiltins(r *Registry) {
	r.MustSet(TagsIndex, Tags)
	r.MustSet(CategoryIndex, Category)
	r.MustSet(TitleIndex, Title)
	r.MustSet(PathIndex, Path)
	r.MustSet(ByMonthIndex, ByMonth)
	r.MustSet(LinksIndex, Links)
}

// Tags indexes entries by each of their tags.
func Tags(entries []*entry.Entry) *Lookup {
	return Group(entries, func(e *entry.Entry) []string {
		return e.Metadata.GetStrings(metadata.KeyTags)
	})
}

// Category indexes entries by Category followed by Categories.
func Category(entries []*entry.Entry) *Lookup {
	return Group(entries, func(e *entry.Entry) []string {
		return append(e.Metadata.GetStrings(metadata.KeyCategory), e.Metadata.GetStrings(metadata.KeyCategories)...)
	})
}

// Title indexes entries by title.
func Title(entries []*entry.Entry) *Lookup {
	return Group(entries, func(e *entry.Entry) []string {
		return []string{e.Title()}
	})
}

// Path indexes entries under every prefix of their path: a/b/c is found under
// a, a/b and a/b/c.
func Path(entries []*entry.Entry) *Lookup {
	return Group(entries, func(e *entry.Entry) []string {
		return Prefixes(e.Path())
	})
}

// Prefixes returns the segment prefixes of a `/`-separated path.
func Prefixes(path string) []string {
	segments := strings.Split(path, "/")
	out := make([]string, len(segments))
	for i := range segments {
		out[i] = strings.Join(segments[:i+1], "/")
	}
	return out
}

// ByMonth indexes entries by the year and month of CreatedAt.
func ByMonth(entries []*entry.Entry) *Lookup {
	return Group(entries, func(e *entry.Entry) []string {
		return []string{e.CreatedAt.Format(ByMonthLayout)}
	})
}

// Links indexes entries by the site paths they link to, so a bucket lists the
// entries referring to its key. External links are ignored.
func Links(entries []*entry.Entry) *Lookup {
	return Group(entries, func(e *entry.Entry) []string {
		var targets []string
		seen := make(map[string]bool)
		for _, dest := range e.Metadata.GetStrings(metadata.KeyLinks) {
			target, ok := LinkTarget(dest)
			if ok && !seen[target] {
				seen[target] = true
				targets = append(targets, target)
			}
		}
		return targets
	})
}

// LinkTarget maps a link destination to the site path it refers to. Absolute
// URLs, fragments and empty destinations have no target.
func LinkTarget(dest string) (string, bool) {
	if strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") {
		return "", false
	}
	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		dest = dest[:i]
	}
	dest = strings.Trim(dest, "/")
	if dest == "" {
		return "", false
	}
	return dest, true
}
