// Package metadata holds the typed metadata model of an entry: a variant Value,
// a case-insensitive Bag, and the converters that turn raw front matter strings
// into typed values.
package metadata

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindBool
	KindTime
	KindStrings
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindStrings:
		return "strings"
	case KindRaw:
		return "raw"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a metadata value. The zero Value is None.
type Value struct {
	kind Kind
	s    string
	b    bool
	t    time.Time
	list []string
	raw  any
}

// None returns the "no value" sentinel.
func None() Value { return Value{} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Bool wraps a bool.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Time wraps a timestamp.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Strings wraps a string list. The slice is copied; nil becomes an empty list.
func Strings(list []string) Value {
	cp := make([]string, len(list))
	copy(cp, list)
	return Value{kind: KindStrings, list: cp}
}

// Raw wraps an arbitrary value supplied by a custom converter.
func Raw(v any) Value { return Value{kind: KindRaw, raw: v} }

// Kind returns the variant held.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v is the "no value" sentinel.
func (v Value) IsNone() bool { return v.kind == KindNone }

// AsString returns the string held, if v is a String.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsBool returns the bool held, if v is a Bool.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsTime returns the timestamp held, if v is a Time.
func (v Value) AsTime() (time.Time, bool) {
	return v.t, v.kind == KindTime
}

// AsStrings returns a copy of the list held, if v is a Strings.
func (v Value) AsStrings() ([]string, bool) {
	if v.kind != KindStrings {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// AsRaw returns the arbitrary value held, if v is a Raw.
func (v Value) AsRaw() (any, bool) {
	return v.raw, v.kind == KindRaw
}

// Interface returns the held value as a plain Go value (nil for None).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	case KindStrings:
		return slices.Clone(v.list)
	case KindRaw:
		return v.raw
	default:
		return nil
	}
}

// String renders v in the front matter text form understood by the builtin
// converters, so converting String() again yields an equal Value.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	case KindStrings:
		return strings.Join(v.list, " ")
	case KindRaw:
		return fmt.Sprint(v.raw)
	default:
		return ""
	}
}

// Equal reports whether two values hold the same variant and content. Raw values
// are compared with ==, which panics for uncomparable dynamic types.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindString:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	case KindStrings:
		return slices.Equal(v.list, o.list)
	default:
		return v.raw == o.raw
	}
}
