package postprocess

import "errors"

// ErrOrderMissing is returned when the Order step has been removed.
var ErrOrderMissing = errors.New("order step missing")
