package entry

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/frontmatter"
	"git.home.luguber.info/inful/flatsite/internal/metadata"
)

// ParseMetadata strips the leading front matter block from Content and stores its
// fields in Metadata. Fields with a registered converter are stored converted;
// others keep their trimmed raw string. It reports whether a block was found.
//
// A converter error is a configuration error and leaves the entry untouched.
func (e *Entry) ParseMetadata(converters *metadata.Converters) (bool, error) {
	block, body, had, _ := frontmatter.Split(e.Content)
	if !had {
		return false, nil
	}

	fields := frontmatter.ParseFields(block)
	values := make([]metadata.Value, len(fields))
	for i, f := range fields {
		conv, ok := converters.Get(f.Key)
		if !ok {
			values[i] = metadata.String(f.Value)
			continue
		}
		v, err := conv(f.Value)
		if err != nil {
			return false, ferrors.ConfigError("metadata converter failed").
				WithCause(fmt.Errorf("%w: %s: %w", ErrConvert, f.Key, err)).
				WithContext("file", e.FilePath()).
				WithContext("key", f.Key).
				Build()
		}
		values[i] = v
	}

	for i, f := range fields {
		e.Metadata.Set(f.Key, values[i])
	}
	e.Content = body
	return true, nil
}
