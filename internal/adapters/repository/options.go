// Package repository implements the semicolon-delimited flat-file tables
// backing evaluators, projects and scores.
package repository

import "github.com/okian/avalia/pkg/logger"

// Option applies a configuration option to a Table.
type Option func(*Table)

// WithLogger sets the logger used for load/save reporting.
func WithLogger(l logger.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.log = l
		}
	}
}
