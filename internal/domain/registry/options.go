// Package registry wraps the flat-file tables with typed, validated access
// to evaluators and projects.
package registry

import "github.com/okian/avalia/pkg/logger"

// Option applies a configuration option to a registry.
type Option func(*options)

type options struct {
	log logger.Logger
}

// WithLogger sets the logger used by the registry and its table.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
