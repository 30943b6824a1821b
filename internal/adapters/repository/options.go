package repository

import (
	"github.com/go-playground/validator/v10"

	"github.com/okian/wrapped/pkg/logger"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithValidator sets the struct validator used for row checks.
func WithValidator(v *validator.Validate) Option {
	return func(s *MemoryStore) {
		if v != nil {
			s.validate = v
		}
	}
}

// WithLogger sets the logger used while loading.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.log = l
		}
	}
}
