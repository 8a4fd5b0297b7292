package format

import (
	"fmt"

	"git.home.luguber.info/inful/flatsite/internal/entry"
	ferrors "git.home.luguber.info/inful/flatsite/internal/foundation/errors"
)

// Apply runs the formatter registered for the entry's extension. A missing
// formatter is a configuration error; a failing formatter is a format error.
func Apply(r *Registry, e *entry.Entry) error {
	ext := e.Extension()
	f, ok := r.Get(ext)
	if !ok {
		return ferrors.ConfigError("entry has no formatter").
			WithCause(fmt.Errorf("%w: %q", ErrNoFormatter, ext)).
			WithContext("file", e.FilePath()).
			Build()
	}
	if err := f.Process(e); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFormat, "format entry").
			WithContext("file", e.FilePath()).
			WithContext("extension", ext).
			Build()
	}
	return nil
}
