// Package normalization maps loosely written configuration strings onto closed
// sets of enum values.
package normalization

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Func allows custom normalization behavior.
type Func func(string) string

// Fold trims surrounding space and applies Unicode case folding.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Normalizer provides type-safe string-to-enum normalization.
type Normalizer[T comparable] struct {
	name         string
	validValues  map[string]T
	defaultValue T
	validKeys    []string
	normalize    Func
}

// NewNormalizer creates a normalizer for the enum called name. Keys are folded
// with Fold.
func NewNormalizer[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	return WithCustomNormalizer(name, values, defaultValue, Fold)
}

// WithCustomNormalizer creates a normalizer whose keys and inputs go through fn.
func WithCustomNormalizer[T comparable](name string, values map[string]T, defaultValue T, fn Func) *Normalizer[T] {
	n := &Normalizer[T]{
		name:         name,
		validValues:  make(map[string]T, len(values)),
		defaultValue: defaultValue,
		normalize:    fn,
	}
	for k, v := range values {
		key := fn(k)
		n.validValues[key] = v
		n.validKeys = append(n.validKeys, key)
	}
	slices.Sort(n.validKeys)
	return n
}

// Lookup returns the value for raw and whether it was recognized.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	v, ok := n.validValues[n.normalize(raw)]
	return v, ok
}

// Normalize returns the value for raw, or the default when raw is not recognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.Lookup(raw); ok {
		return v
	}
	return n.defaultValue
}

// NormalizeWithError returns an error naming the valid options when raw is not
// recognized.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := n.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %v", n.name, raw, n.validKeys)
}

// Default returns the fallback value.
func (n *Normalizer[T]) Default() T { return n.defaultValue }

// ValidKeys returns all valid normalized keys, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	return slices.Clone(n.validKeys)
}

// Result is the outcome of normalizing one field.
type Result[T comparable] struct {
	Value   T
	Changed bool
	Warning string
}

// NormalizeField normalizes the value of field and describes any change. An
// empty raw value yields the default without a warning.
func (n *Normalizer[T]) NormalizeField(field, raw string) Result[T] {
	if strings.TrimSpace(raw) == "" {
		return Result[T]{Value: n.defaultValue, Changed: raw != ""}
	}
	v, ok := n.Lookup(raw)
	if !ok {
		return Result[T]{
			Value:   n.defaultValue,
			Changed: true,
			Warning: fmt.Sprintf("unknown %s %q for %s, using %v", n.name, raw, field, n.defaultValue),
		}
	}
	res := Result[T]{Value: v}
	if fmt.Sprint(v) != raw {
		res.Changed = true
		res.Warning = fmt.Sprintf("normalized %s from %q to %q", field, raw, fmt.Sprint(v))
	}
	return res
}
