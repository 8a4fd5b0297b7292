package eventstore

import "errors"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("event store is closed")
