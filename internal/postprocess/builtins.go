package postprocess

import (
	"cmp"
	"regexp"
	"slices"
	"time"

	"git.home.luguber.info/inful/flatsite/internal/entry"
	"git.home.luguber.info/inful/flatsite/internal/metadata"
)

// Names of the builtin steps.
const (
	PublishedStep   = "Builtin/Published"
	CreatedAtStep   = "Builtin/CreatedAt"
	ModifiedAtStep  = "Builtin/ModifiedAt"
	SummaryStep     = "Builtin/Summary"
	FingerprintStep = "Builtin/Fingerprint"
)

// RegisterBuiltins adds the builtin steps in their execution order.
func RegisterBuiltins(r *Registry) {
	r.MustSet(PublishedStep, Published)
	r.MustSet(CreatedAtStep, CreatedAt)
	r.MustSet(ModifiedAtStep, ModifiedAt)
	r.MustSet(SummaryStep, Summary)
	r.MustSet(FingerprintStep, Fingerprint)
	r.MustSet(OrderStep, Order)
}

// Published drops entries whose Published metadata is false.
func Published(entries []*entry.Entry) []*entry.Entry {
	return slices.DeleteFunc(entries, func(e *entry.Entry) bool {
		v, ok := e.Metadata.Get(metadata.KeyPublished)
		if !ok {
			return false
		}
		published, isBool := v.AsBool()
		return isBool && !published
	})
}

var pathDate = regexp.MustCompile(`(\d{4}[/\\-]\d{1,2}[/\\-]\d{1,2})[/\\-]`)

var pathDateLayouts = []string{"2006/1/2", "2006-1-2"}

// CreatedAt prefers a CreatedAt timestamp from the metadata, then a date embedded
// in the path such as 2024/01/31/slug.
func CreatedAt(entries []*entry.Entry) []*entry.Entry {
	for _, e := range entries {
		if v, ok := e.Metadata.Get(metadata.KeyCreatedAt); ok {
			if t, isTime := v.AsTime(); isTime {
				e.CreatedAt = t
				continue
			}
		}
		if t, ok := DateFromPath(e.Path()); ok {
			e.CreatedAt = t
		}
	}
	return entries
}

// DateFromPath extracts a local date from the first yyyy/m/d (or yyyy-m-d)
// prefix followed by a separator.
func DateFromPath(path string) (time.Time, bool) {
	m := pathDate.FindStringSubmatch(path)
	if m == nil {
		return time.Time{}, false
	}
	for _, layout := range pathDateLayouts {
		if t, err := time.ParseInLocation(layout, m[1], time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ModifiedAt applies a ModifiedAt timestamp from the metadata.
func ModifiedAt(entries []*entry.Entry) []*entry.Entry {
	for _, e := range entries {
		if v, ok := e.Metadata.Get(metadata.KeyModifiedAt); ok {
			if t, isTime := v.AsTime(); isTime {
				e.ModifiedAt = t
			}
		}
	}
	return entries
}

// Order sorts newest first, then by path. The sort is stable.
func Order(entries []*entry.Entry) []*entry.Entry {
	slices.SortStableFunc(entries, func(a, b *entry.Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Path(), b.Path())
	})
	return entries
}
