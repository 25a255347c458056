package history

import "errors"

// ErrNotFound indicates no download record exists for the given key.
var ErrNotFound = errors.New("download record not found")
