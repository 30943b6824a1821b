// Package model contains domain models passed between layers.
package model

import (
	"context"
	"strings"
)

// Competitor is a league participant. Immutable after ingestion.
type Competitor struct {
	ID   string `validate:"required"`
	Name string
}

// Round is one themed round of the season.
type Round struct {
	ID          string `validate:"required"`
	Position    int    `validate:"min=0"` // order within the season
	Name        string
	Description string
	PointBudget int `validate:"min=0"` // max points a voter may hand out; 0 is unbounded
}

// Submission is a track entered by a competitor in a round.
type Submission struct {
	RoundID     string `validate:"required"`
	SubmitterID string `validate:"required"`
	TrackID     string `validate:"required"` // opaque, e.g. a Spotify URI
	Title       string
	Artist      string
	Comment     string
}

// Key identifies the submission within its round.
func (s Submission) Key() SubmissionKey {
	return SubmissionKey{RoundID: s.RoundID, TrackID: s.TrackID}
}

// Vote is one voter's allocation to one submission.
type Vote struct {
	RoundID  string `validate:"required"`
	TrackID  string `validate:"required"`
	VoterID  string `validate:"required"`
	Points   int    `validate:"min=0"`
	Comment  string
	Sequence int // order the vote was cast in within its round
}

// Key identifies the submission the vote targets.
func (v Vote) Key() SubmissionKey {
	return SubmissionKey{RoundID: v.RoundID, TrackID: v.TrackID}
}

// HasComment reports whether the vote carries non-blank comment text.
func (v Vote) HasComment() bool {
	return strings.TrimSpace(v.Comment) != ""
}

// SubmissionKey addresses a submission by round and track.
type SubmissionKey struct {
	RoundID string
	TrackID string
}

// Job is a unit of work executed by the worker pool. Each job writes only to
// its own output slot.
type Job struct {
	ID  string
	Run func(ctx context.Context) error
}

// Runner executes a batch of jobs and returns the first failure.
type Runner interface {
	Run(ctx context.Context, jobs []Job) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, jobs []Job) error

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, jobs []Job) error { return f(ctx, jobs) }

// Sequential runs jobs one after another on the calling goroutine.
var Sequential Runner = RunnerFunc(func(ctx context.Context, jobs []Job) error {
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.Run(ctx); err != nil {
			return err
		}
	}
	return nil
})
