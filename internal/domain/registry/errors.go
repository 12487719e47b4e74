package registry

import "errors"

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")
