package entry

import "errors"

// ErrConvert marks a metadata converter that returned an error.
var ErrConvert = errors.New("metadata conversion failed")
