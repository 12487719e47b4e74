package ledger

import "github.com/okian/avalia/pkg/logger"

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithLogger sets the logger used by the ledger and its table.
func WithLogger(l logger.Logger) Option {
	return func(g *Ledger) {
		if l != nil {
			g.log = l
		}
	}
}
