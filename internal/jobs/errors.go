package jobs

import "errors"

// ErrNotFound indicates the requested job does not exist.
var ErrNotFound = errors.New("not found")
