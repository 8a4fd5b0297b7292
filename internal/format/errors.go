package format

import "errors"

// ErrNoFormatter is returned when an entry's extension has no registered formatter.
var ErrNoFormatter = errors.New("no formatter registered for extension")
