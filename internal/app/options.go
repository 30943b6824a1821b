package service

import (
	"time"

	"github.com/okian/wrapped/internal/adapters/ingest"
	"github.com/okian/wrapped/internal/adapters/popularity"
	"github.com/okian/wrapped/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLoader sets the source of season rows.
func WithLoader(l ingest.Loader) Option {
	return func(s *Service) {
		s.loader = l
	}
}

// WithPopularityProvider enables track popularity enrichment.
func WithPopularityProvider(p popularity.Provider) Option {
	return func(s *Service) {
		s.provider = p
	}
}

// WithPopularityTimeout bounds the whole enrichment step.
func WithPopularityTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.popularityTimeout = d
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMinSharedVotes sets the overlap a pair needs to be scored.
func WithMinSharedVotes(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pairOpts.MinSharedVotes = n
		}
	}
}

// WithExcludeSelfVotes controls whether votes on one's own submission count
// toward pair scores.
func WithExcludeSelfVotes(exclude bool) Option {
	return func(s *Service) {
		s.pairOpts.ExcludeSelfVotes = exclude
	}
}

// WithMinSubmissions sets the Best Performance sample threshold.
func WithMinSubmissions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.thresholds.MinSubmissions = n
		}
	}
}

// WithMinRoundsVoted sets the vote timing sample threshold.
func WithMinRoundsVoted(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.thresholds.MinRoundsVoted = n
		}
	}
}

// WithAwards selects and orders the awards to resolve. Empty means all.
func WithAwards(keys []string) Option {
	return func(s *Service) {
		s.awards = keys
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
