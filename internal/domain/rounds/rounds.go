// Package rounds computes per-submission totals and winner sets for each round.
package rounds

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/okian/wrapped/internal/domain/model"
)

// SubmissionTotals is a submission plus the figures derived from its votes.
type SubmissionTotals struct {
	Submission model.Submission
	Points     int
	Votes      int
	Comments   int
}

// Result is the aggregate of one round.
type Result struct {
	Round       model.Round
	Submissions []SubmissionTotals
	// Votes are the round's votes ordered by Sequence, voter, then track.
	Votes     []model.Vote
	MaxPoints int
	// Winners holds every submission whose total equals MaxPoints, ordered
	// by submitter. Empty only when the round has no submissions.
	Winners []model.Submission
}

// Won reports whether competitorID has a submission in the winner set.
func (r *Result) Won(competitorID string) bool {
	for _, w := range r.Winners {
		if w.SubmitterID == competitorID {
			return true
		}
	}
	return false
}

// Source is the read side of the season store the aggregator needs.
type Source interface {
	Rounds(ctx context.Context) []model.Round
	Submissions(ctx context.Context, roundID string) []model.Submission
	Votes(ctx context.Context, roundID string) []model.Vote
}

// Aggregate totals one round. Every vote must target one of subs.
func Aggregate(round model.Round, subs []model.Submission, votes []model.Vote) (Result, error) {
	res := Result{
		Round:       round,
		Submissions: make([]SubmissionTotals, len(subs)),
		Votes:       slices.Clone(votes),
	}
	slices.SortFunc(res.Votes, func(a, b model.Vote) int {
		if c := cmp.Compare(a.Sequence, b.Sequence); c != 0 {
			return c
		}
		if c := cmp.Compare(a.VoterID, b.VoterID); c != 0 {
			return c
		}
		return cmp.Compare(a.TrackID, b.TrackID)
	})
	idx := make(map[string]int, len(subs))
	for i, s := range subs {
		res.Submissions[i] = SubmissionTotals{Submission: s}
		idx[s.TrackID] = i
	}

	for _, v := range votes {
		i, ok := idx[v.TrackID]
		if !ok || v.RoundID != round.ID {
			return Result{}, fmt.Errorf("round %s: track %s by %s: %w", round.ID, v.TrackID, v.VoterID, ErrUnknownSubmission)
		}
		t := &res.Submissions[i]
		t.Points += v.Points
		t.Votes++
		if v.HasComment() {
			t.Comments++
		}
	}

	for i, t := range res.Submissions {
		if i == 0 || t.Points > res.MaxPoints {
			res.MaxPoints = t.Points
		}
	}
	for _, t := range res.Submissions {
		if t.Points == res.MaxPoints {
			res.Winners = append(res.Winners, t.Submission)
		}
	}
	slices.SortFunc(res.Winners, func(a, b model.Submission) int {
		if c := cmp.Compare(a.SubmitterID, b.SubmitterID); c != 0 {
			return c
		}
		return cmp.Compare(a.TrackID, b.TrackID)
	})
	return res, nil
}

// AggregateAll aggregates every round of src on runner, one job per round.
// Results keep the store's round order.
func AggregateAll(ctx context.Context, src Source, runner model.Runner) ([]Result, error) {
	rounds := src.Rounds(ctx)
	results := make([]Result, len(rounds))
	jobs := make([]model.Job, len(rounds))
	for i, r := range rounds {
		jobs[i] = model.Job{
			ID: "round/" + r.ID,
			Run: func(ctx context.Context) error {
				res, err := Aggregate(r, src.Submissions(ctx, r.ID), src.Votes(ctx, r.ID))
				if err != nil {
					return err
				}
				results[i] = res
				return nil
			},
		}
	}
	if err := runner.Run(ctx, jobs); err != nil {
		return nil, fmt.Errorf("aggregate rounds: %w", err)
	}
	return results, nil
}
