package ingest

import "github.com/okian/wrapped/pkg/logger"

// Option configures a CSVLoader.
type Option func(*CSVLoader)

// WithLogger sets the loader logger.
func WithLogger(l logger.Logger) Option {
	return func(c *CSVLoader) {
		if l != nil {
			c.log = l
		}
	}
}
