package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNoSelection means an operation needed a record and none was chosen.
	ErrNoSelection = errors.New("no record selected")
	// ErrWrongMode means a score operation is not available in the current mode.
	ErrWrongMode = errors.New("operation not available in current mode")
	// ErrNotLinked means the evaluator is not assigned to the project.
	ErrNotLinked = errors.New("project not linked to evaluator")
)
