package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrIO              = errors.New("store file i/o failed")
	ErrIndexOutOfRange = errors.New("row index out of range")
)
