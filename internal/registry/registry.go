// Package registry provides the string-keyed, insertion-ordered registry that backs
// every extension point of the engine (crawlers, formatters, indexers, converters,
// post-processors, routes).
//
// Keys are compared case-insensitively using Unicode case folding. Replacing an
// existing key keeps its original position. A registry can be frozen once the
// owning engine is initialized; later mutation attempts return ErrFrozen.
package registry

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"

	"golang.org/x/text/cases"
)

// ErrFrozen is returned when a frozen registry is mutated.
var ErrFrozen = errors.New("registry is frozen")

// ErrNotFound is returned by InsertBefore when the anchor key is not registered.
var ErrNotFound = errors.New("registry key not found")

// Fold returns the canonical comparison form of a key. A Caser must not be
// shared between goroutines, so each call gets its own.
func Fold(key string) string {
	return cases.Fold().String(key)
}

type item[T any] struct {
	key   string // key as first registered
	value T
}

// Registry is an insertion-ordered map from case-insensitive string keys to T.
type Registry[T any] struct {
	mu     sync.RWMutex
	items  []item[T]
	pos    map[string]int
	frozen bool
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{pos: make(map[string]int)}
}

// Set registers value under key. An existing key is replaced in place.
func (r *Registry[T]) Set(key string, value T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: set %q", ErrFrozen, key)
	}
	folded := Fold(key)
	if i, ok := r.pos[folded]; ok {
		r.items[i].value = value
		return nil
	}
	r.pos[folded] = len(r.items)
	r.items = append(r.items, item[T]{key: key, value: value})
	return nil
}

// MustSet is Set for builtin registration, where a frozen registry is a programming error.
func (r *Registry[T]) MustSet(key string, value T) {
	if err := r.Set(key, value); err != nil {
		panic(err)
	}
}

// InsertBefore registers key immediately before anchor. If key already exists it is
// moved. Used to place routes ahead of the catch-all builtins.
func (r *Registry[T]) InsertBefore(anchor, key string, value T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: insert %q", ErrFrozen, key)
	}
	ai, ok := r.pos[Fold(anchor)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, anchor)
	}
	if Fold(anchor) == Fold(key) {
		r.items[ai].value = value
		return nil
	}
	if i, ok := r.pos[Fold(key)]; ok {
		r.items = slices.Delete(r.items, i, i+1)
	}
	at := slices.IndexFunc(r.items, func(it item[T]) bool { return Fold(it.key) == Fold(anchor) })
	r.items = slices.Insert(r.items, at, item[T]{key: key, value: value})
	r.reindex()
	return nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (r *Registry[T]) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: delete %q", ErrFrozen, key)
	}
	i, ok := r.pos[Fold(key)]
	if !ok {
		return nil
	}
	r.items = slices.Delete(r.items, i, i+1)
	r.reindex()
	return nil
}

func (r *Registry[T]) reindex() {
	clear(r.pos)
	for i, it := range r.items {
		r.pos[Fold(it.key)] = i
	}
}

// Get returns the value registered under key.
func (r *Registry[T]) Get(key string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.pos[Fold(key)]
	if !ok {
		var zero T
		return zero, false
	}
	return r.items[i].value, true
}

// Has reports whether key is registered.
func (r *Registry[T]) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns the registered keys in insertion order.
func (r *Registry[T]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, len(r.items))
	for i, it := range r.items {
		keys[i] = it.key
	}
	return keys
}

// Len returns the number of registered keys.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// All iterates key/value pairs in insertion order over a snapshot of the registry.
func (r *Registry[T]) All() iter.Seq2[string, T] {
	r.mu.RLock()
	snapshot := slices.Clone(r.items)
	r.mu.RUnlock()
	return func(yield func(string, T) bool) {
		for _, it := range snapshot {
			if !yield(it.key, it.value) {
				return
			}
		}
	}
}

// Freeze makes the registry read-only.
func (r *Registry[T]) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry[T]) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}
