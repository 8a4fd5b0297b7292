package metadata

import (
	"maps"
	"slices"

	"git.home.luguber.info/inful/flatsite/internal/registry"
)

// Bag is a case-insensitive key → Value mapping. Keys keep the spelling they were
// first set with. Bag is not safe for concurrent mutation.
type Bag struct {
	values map[string]Value
	names  map[string]string
}

// NewBag returns an empty bag.
func NewBag() *Bag {
	return &Bag{values: make(map[string]Value), names: make(map[string]string)}
}

// Set stores v under key.
func (b *Bag) Set(key string, v Value) {
	folded := registry.Fold(key)
	if _, ok := b.names[folded]; !ok {
		b.names[folded] = key
	}
	b.values[folded] = v
}

// Get returns the value stored under key.
func (b *Bag) Get(key string) (Value, bool) {
	if b == nil {
		return Value{}, false
	}
	v, ok := b.values[registry.Fold(key)]
	return v, ok
}

// Has reports whether key is present. A key holding None is present.
func (b *Bag) Has(key string) bool {
	_, ok := b.Get(key)
	return ok
}

// Delete removes key.
func (b *Bag) Delete(key string) {
	folded := registry.Fold(key)
	delete(b.values, folded)
	delete(b.names, folded)
}

// Len returns the number of keys.
func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.values)
}

// Keys returns the stored keys, sorted for stable output.
func (b *Bag) Keys() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Values(b.names))
}

// GetString returns the string stored under key, or "" when absent or not a string.
func (b *Bag) GetString(key string) string {
	v, _ := b.Get(key)
	s, _ := v.AsString()
	return s
}

// GetStrings returns the list stored under key, or nil when absent or not a list.
func (b *Bag) GetStrings(key string) []string {
	v, _ := b.Get(key)
	list, _ := v.AsStrings()
	return list
}

// Map returns a plain map of key → Interface() values, for serialization.
func (b *Bag) Map() map[string]any {
	out := make(map[string]any, b.Len())
	if b == nil {
		return out
	}
	for folded, name := range b.names {
		out[name] = b.values[folded].Interface()
	}
	return out
}
