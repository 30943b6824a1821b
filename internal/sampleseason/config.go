package sampleseason

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds configuration for a generated season.
type Config struct {
	// OutputDir receives the four export CSVs.
	OutputDir string `validate:"required"`

	Competitors int `validate:"min=2"`
	Rounds      int `validate:"min=1"`

	// PointsPerVoter is what each voter hands out per round, spread over
	// at most MaxTargets submissions.
	PointsPerVoter int `validate:"min=1"`
	MaxTargets     int `validate:"min=1"`

	// Participation is the chance a competitor enters a round.
	Participation float64 `validate:"gt=0,lte=1"`
	// CommentRate is the chance a vote or submission carries a comment.
	CommentRate float64 `validate:"gte=0,lte=1"`

	// Seed makes generation reproducible.
	Seed uint64

	Start         time.Time     `validate:"required"`
	RoundInterval time.Duration `validate:"gt=0"`

	// VerifyURL, when set, is a running service checked against the export.
	VerifyURL string        `validate:"omitempty,http_url"`
	Timeout   time.Duration `validate:"required_with=VerifyURL"`
}

// DefaultConfig returns a small eight-person league.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:      "data",
		Competitors:    8,
		Rounds:         10,
		PointsPerVoter: 10,
		MaxTargets:     4,
		Participation:  0.9,
		CommentRate:    0.3,
		Seed:           1,
		Start:          time.Date(2024, time.January, 1, 18, 0, 0, 0, time.UTC),
		RoundInterval:  7 * 24 * time.Hour,
		Timeout:        10 * time.Second,
	}
}

// Validate checks the config bounds.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
