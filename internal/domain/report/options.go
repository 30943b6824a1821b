package report

import (
	"time"

	"github.com/okian/wrapped/internal/domain/model"
	"github.com/okian/wrapped/internal/domain/pairing"
	"github.com/okian/wrapped/internal/domain/superlatives"
	"github.com/okian/wrapped/pkg/logger"
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithRunner sets the runner the parallel stages execute on.
func WithRunner(r model.Runner) Option {
	return func(b *Builder) {
		if r != nil {
			b.runner = r
		}
	}
}

// WithRules sets the award rules, in output order.
func WithRules(rules []superlatives.Rule) Option {
	return func(b *Builder) {
		if rules != nil {
			b.rules = rules
		}
	}
}

// WithPairOptions sets pair eligibility.
func WithPairOptions(o pairing.Options) Option {
	return func(b *Builder) {
		b.pairOpts = o
	}
}

// WithLogger sets the builder logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// WithClock overrides the clock stamped on reports.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}
