package postprocess

import (
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/flatsite/internal/entry"
	"git.home.luguber.info/inful/flatsite/internal/frontmatter"
	"git.home.luguber.info/inful/flatsite/internal/metadata"
	"git.home.luguber.info/inful/flatsite/internal/registry"
)

// KeyFingerprint is the metadata key holding the content fingerprint.
const KeyFingerprint = "Fingerprint"

// Metadata keys that do not contribute to the fingerprint.
var fingerprintExcluded = map[string]bool{
	registry.Fold(KeyFingerprint):         true,
	registry.Fold(metadata.KeyFilePath):   true,
	registry.Fold(metadata.KeyModifiedAt): true,
}

// Fingerprint stores a stable hash of the metadata and formatted content.
func Fingerprint(entries []*entry.Entry) []*entry.Entry {
	for _, e := range entries {
		e.Metadata.Set(KeyFingerprint, metadata.String(ComputeFingerprint(e)))
	}
	return entries
}

// ComputeFingerprint hashes the entry's metadata (sorted by key) and content.
func ComputeFingerprint(e *entry.Entry) string {
	fields := make([]frontmatter.Field, 0, e.Metadata.Len())
	for _, key := range e.Metadata.Keys() {
		if fingerprintExcluded[registry.Fold(key)] {
			continue
		}
		v, _ := e.Metadata.Get(key)
		fields = append(fields, frontmatter.Field{Key: key, Value: v.String()})
	}
	fm := frontmatter.SerializeFields(fields, frontmatter.Style{Newline: "\n"})
	return mdfp.CalculateFingerprintFromParts(fm, e.Content)
}
