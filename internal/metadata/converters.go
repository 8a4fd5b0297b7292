package metadata

import (
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/flatsite/internal/registry"
)

// Converter turns the trimmed raw value of a front matter line into a typed Value.
// Returning None signals an unusable value; returning an error aborts the entry.
type Converter func(raw string) (Value, error)

// Converters is the key → Converter registry consulted while parsing metadata.
type Converters = registry.Registry[Converter]

// Keys of the builtin metadata fields.
const (
	KeyTitle      = "Title"
	KeyFilePath   = "FilePath"
	KeyPath       = "Path"
	KeyTags       = "Tags"
	KeyCategory   = "Category"
	KeyCategories = "Categories"
	KeyPublished  = "Published"
	KeyCreatedAt  = "CreatedAt"
	KeyModifiedAt = "ModifiedAt"
	KeySummary    = "Summary"
	KeyLinks      = "Links"
)

// RegisterBuiltins adds the builtin converters to r.
func RegisterBuiltins(r *Converters) {
	r.MustSet(KeyCategories, SpaceList)
	r.MustSet(KeyCategory, SpaceList)
	r.MustSet(KeyTags, SpaceList)
	r.MustSet(KeyPublished, PublishedFlag)
	r.MustSet(KeyCreatedAt, DateTime)
	r.MustSet(KeyModifiedAt, DateTime)
}

// SpaceList splits on single spaces, dropping empty parts.
func SpaceList(raw string) (Value, error) {
	parts := strings.Split(raw, " ")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			list = append(list, p)
		}
	}
	return Strings(list), nil
}

// PublishedFlag parses a boolean; anything unparsable counts as false.
func PublishedFlag(raw string) (Value, error) {
	b, err := strconv.ParseBool(raw)
	return Bool(err == nil && b), nil
}

// dateLayouts are tried in order by DateTime.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-1-2",
	"2006/1/2",
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006",
	"January 2, 2006",
}

// DateTime parses a date-time leniently in local time. Unparsable input yields None.
func DateTime(raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return None(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return Time(t), nil
		}
	}
	return None(), nil
}

// NewConverters returns an empty converter registry.
func NewConverters() *Converters {
	return registry.New[Converter]()
}
