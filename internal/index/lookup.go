// Package index builds the named multi-valued lookups over the ordered entry
// collection.
package index

import (
	"git.home.luguber.info/inful/flatsite/internal/entry"
)

// Lookup maps a key to an ordered bucket of entries. Keys are case-sensitive and
// kept in first-seen order. A Lookup is read-only once built.
type Lookup struct {
	keys    []string
	buckets map[string][]*entry.Entry
}

// NewLookup returns an empty lookup.
func NewLookup() *Lookup {
	return &Lookup{buckets: make(map[string][]*entry.Entry)}
}

// Add appends e to the bucket of key.
func (l *Lookup) Add(key string, e *entry.Entry) {
	if _, ok := l.buckets[key]; !ok {
		l.keys = append(l.keys, key)
	}
	l.buckets[key] = append(l.buckets[key], e)
}

// Get returns the bucket for key; a missing key yields an empty bucket.
func (l *Lookup) Get(key string) []*entry.Entry {
	if l == nil {
		return nil
	}
	return l.buckets[key]
}

// Contains reports whether key has a bucket.
func (l *Lookup) Contains(key string) bool {
	if l == nil {
		return false
	}
	_, ok := l.buckets[key]
	return ok
}

// Keys returns the keys in first-seen order.
func (l *Lookup) Keys() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.keys...)
}

// Len returns the number of keys.
func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.keys)
}

// Group builds a lookup by calling keys for every entry, in order.
func Group(entries []*entry.Entry, keys func(e *entry.Entry) []string) *Lookup {
	l := NewLookup()
	for _, e := range entries {
		for _, k := range keys(e) {
			l.Add(k, e)
		}
	}
	return l
}
