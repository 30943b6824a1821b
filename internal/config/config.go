// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and the environment.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// DataDir holds competitors.csv, rounds.csv, submissions.csv and votes.csv.
	DataDir string `koanf:"data_dir" validate:"required"`

	// WorkerCount sets the number of aggregation workers.
	WorkerCount int `koanf:"worker_count" validate:"min=1"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size" validate:"min=1"`

	// MinSharedVotes is the overlap a pair needs before it is scored.
	MinSharedVotes int `koanf:"min_shared_votes" validate:"min=1"`

	// MinSubmissions gates the average-based awards.
	MinSubmissions int `koanf:"min_submissions" validate:"min=1"`

	// MinRoundsVoted gates the vote timing awards.
	MinRoundsVoted int `koanf:"min_rounds_voted" validate:"min=1"`

	// ExcludeSelfVotesFromPairs drops votes on a voter's own submission
	// from pairwise vectors. Totals always include them.
	ExcludeSelfVotesFromPairs bool `koanf:"exclude_self_votes_from_pairs"`

	// Awards selects and orders award rules by key. Empty means all defaults.
	Awards []string `koanf:"awards" validate:"dive,required"`

	// SpotifyClientID and SpotifyClientSecret enable popularity lookups.
	SpotifyClientID     string `koanf:"spotify_client_id"`
	SpotifyClientSecret string `koanf:"spotify_client_secret" validate:"required_with=SpotifyClientID"`

	// PopularityTimeoutMS bounds the whole popularity enrichment step.
	PopularityTimeoutMS int `koanf:"popularity_timeout_ms" validate:"min=1"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                  "info",
		LogFormat:                 "text",
		Addr:                      ":9080",
		DataDir:                   "data",
		WorkerCount:               runtime.NumCPU(),
		QueueSize:                 10_000,
		MinSharedVotes:            1,
		MinSubmissions:            1,
		MinRoundsVoted:            1,
		ExcludeSelfVotesFromPairs: true,
		PopularityTimeoutMS:       10_000,
	}
}

// PopularityEnabled reports whether Spotify credentials are configured.
func (c *Config) PopularityEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}
