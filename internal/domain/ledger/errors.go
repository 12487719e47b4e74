package ledger

import "errors"

// ErrNotFound is returned when no score matches the request.
var ErrNotFound = errors.New("score not found")
