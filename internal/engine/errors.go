package engine

import "errors"

// ErrInitialized is returned when Initialize runs a second time.
var ErrInitialized = errors.New("engine already initialized")
