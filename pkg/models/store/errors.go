package store

import "errors"

// ErrNotFound is returned by cache stores when no record exists for a key.
var ErrNotFound = errors.New("record not found")
