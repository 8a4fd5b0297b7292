package route

import "errors"

// ErrBadPattern marks a route pattern that is not a valid regular expression.
var ErrBadPattern = errors.New("invalid route pattern")
