// Package entry defines a single content item and its construction from disk.
package entry

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"

	ferrors "git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/metadata"
)

// Entry is one content item. Title, FilePath and Path live in Metadata; the
// accessors are views over the bag.
type Entry struct {
	Content    string
	Metadata   *metadata.Bag
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// New reads filePath and builds an entry whose Path is relative to baseDir.
// CreatedAt comes from the file birth time when the platform records one,
// otherwise from the modification time.
func New(baseDir, filePath string) (*Entry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read entry").
			WithContext("file", filePath).
			Build()
	}
	ts, err := times.Stat(filePath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "stat entry").
			WithContext("file", filePath).
			Build()
	}

	e := NewFromContent(baseDir, filePath, string(data))
	e.ModifiedAt = ts.ModTime()
	e.CreatedAt = ts.ModTime()
	if ts.HasBirthTime() {
		e.CreatedAt = ts.BirthTime()
	}
	return e, nil
}

// NewFromContent builds an entry for filePath without touching the disk.
// Title defaults to the file name without extension and Tags to an empty list.
func NewFromContent(baseDir, filePath, content string) *Entry {
	e := &Entry{Content: content, Metadata: metadata.NewBag()}
	e.SetFilePath(filePath)
	e.SetPath(SitePath(baseDir, filePath))
	name := filepath.Base(filePath)
	e.SetTitle(strings.TrimSuffix(name, filepath.Ext(name)))
	e.Metadata.Set(metadata.KeyTags, metadata.Strings(nil))
	return e
}

// SitePath maps a file below baseDir to its site path: relative, `/`-separated,
// no leading slash and no extension.
func SitePath(baseDir, filePath string) string {
	rel, err := filepath.Rel(baseDir, filePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = strings.TrimPrefix(filePath, baseDir)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	rel = strings.ReplaceAll(filepath.ToSlash(rel), `\`, "/")
	return strings.TrimLeft(rel, "/")
}

// Title returns the Title metadata value.
func (e *Entry) Title() string { return e.Metadata.GetString(metadata.KeyTitle) }
// SetTitle replaces the Title metadata value.
func (e *Entry) SetTitle(title string) { e.Metadata.Set(metadata.KeyTitle, metadata.String(title)) }

// FilePath returns the path of the backing file.
func (e *Entry) FilePath() string { return e.Metadata.GetString(metadata.KeyFilePath) }
// SetFilePath records the path of the backing file.
func (e *Entry) SetFilePath(p string) {
	e.Metadata.Set(metadata.KeyFilePath, metadata.String(p))
}

// Path returns the routing path, relative to the entries directory and without extension.
func (e *Entry) Path() string { return e.Metadata.GetString(metadata.KeyPath) }
// SetPath replaces the routing path.
func (e *Entry) SetPath(p string) { e.Metadata.Set(metadata.KeyPath, metadata.String(p)) }

// Extension returns the lower-cased extension of the backing file, with the dot.
func (e *Entry) Extension() string {
	return strings.ToLower(filepath.Ext(e.FilePath()))
}

// Tags returns the Tags list, or nil if a custom converter stored something else.
func (e *Entry) Tags() []string { return e.Metadata.GetStrings(metadata.KeyTags) }
