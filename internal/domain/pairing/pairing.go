// Package pairing scores every unordered pair of voters on how they voted.
//
// Compatibility is the weighted Jaccard (Ruzicka) agreement of the points
// both gave to the submissions they both voted on. Similarity is the
// histogram intersection of their point-value distributions over all votes.
// MutualSupport is the mean share of own points each gave to the other's
// submissions. All three are on a 0-100 scale and are computed from integer
// numerators and denominators with a single final division, so pairs with
// equal rational scores compare exactly equal.
package pairing

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/okian/wrapped/internal/domain/model"
	"github.com/okian/wrapped/internal/domain/rounds"
)

// ErrInvalidOptions is returned for a MinSharedVotes below one.
var ErrInvalidOptions = errors.New("invalid pairing options")

// Pair is an unordered competitor pair with A < B.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewPair orders the two IDs.
func NewPair(x, y string) Pair {
	if y < x {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// Has reports whether id is one side of the pair.
func (p Pair) Has(id string) bool { return p.A == id || p.B == id }

// Other returns the side that is not id.
func (p Pair) Other(id string) string {
	if p.A == id {
		return p.B
	}
	return p.A
}

func (p Pair) String() string { return p.A + "+" + p.B }

// Compare orders pairs by A, then B.
func (p Pair) Compare(o Pair) int {
	if c := cmp.Compare(p.A, o.A); c != 0 {
		return c
	}
	return cmp.Compare(p.B, o.B)
}

// Score holds the pairwise figures for one eligible pair.
type Score struct {
	Pair          Pair
	SharedVotes   int
	Compatibility float64
	Similarity    float64
	MutualSupport float64
}

// Options control pair eligibility.
type Options struct {
	// MinSharedVotes is the number of commonly voted submissions a pair
	// needs to be scored.
	MinSharedVotes int
	// ExcludeSelfVotes drops votes on the voter's own submission.
	ExcludeSelfVotes bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{MinSharedVotes: 1, ExcludeSelfVotes: true}
}

// Outcome is the scored set plus the number of pairs left out.
type Outcome struct {
	Scores   []Score
	Excluded int
}

type profile struct {
	id     string
	points map[model.SubmissionKey]int
	// votes per point value
	histogram map[int]int
	votes     int
	total     int
	// points given per submitter
	given map[string]int
}

// Build scores all voter pairs in results on runner, one job per anchor voter.
// Scores are ordered by pair.
func Build(ctx context.Context, results []rounds.Result, opts Options, runner model.Runner) (Outcome, error) {
	if opts.MinSharedVotes < 1 {
		return Outcome{}, fmt.Errorf("%w: min shared votes %d", ErrInvalidOptions, opts.MinSharedVotes)
	}

	profiles := buildProfiles(results, opts.ExcludeSelfVotes)
	rows := make([][]Score, len(profiles))
	excluded := make([]int, len(profiles))
	jobs := make([]model.Job, 0, len(profiles))
	for i := range profiles {
		if i == len(profiles)-1 {
			break
		}
		jobs = append(jobs, model.Job{
			ID: "pairs/" + profiles[i].id,
			Run: func(ctx context.Context) error {
				for j := i + 1; j < len(profiles); j++ {
					if s, ok := score(&profiles[i], &profiles[j], opts.MinSharedVotes); ok {
						rows[i] = append(rows[i], s)
					} else {
						excluded[i]++
					}
				}
				return ctx.Err()
			},
		})
	}
	if err := runner.Run(ctx, jobs); err != nil {
		return Outcome{}, fmt.Errorf("score pairs: %w", err)
	}

	var out Outcome
	for i := range rows {
		out.Scores = append(out.Scores, rows[i]...)
		out.Excluded += excluded[i]
	}
	return out, nil
}

// buildProfiles returns one profile per voter, ordered by voter ID.
func buildProfiles(results []rounds.Result, excludeSelf bool) []profile {
	byID := map[string]*profile{}
	for i := range results {
		res := &results[i]
		submitterOf := make(map[string]string, len(res.Submissions))
		for _, t := range res.Submissions {
			submitterOf[t.Submission.TrackID] = t.Submission.SubmitterID
		}
		for _, v := range res.Votes {
			submitter := submitterOf[v.TrackID]
			if excludeSelf && submitter == v.VoterID {
				continue
			}
			p, ok := byID[v.VoterID]
			if !ok {
				p = &profile{
					id:        v.VoterID,
					points:    map[model.SubmissionKey]int{},
					histogram: map[int]int{},
					given:     map[string]int{},
				}
				byID[v.VoterID] = p
			}
			p.points[v.Key()] = v.Points
			p.histogram[v.Points]++
			p.votes++
			p.total += v.Points
			p.given[submitter] += v.Points
		}
	}

	out := make([]profile, 0, len(byID))
	for _, p := range byID {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b profile) int { return cmp.Compare(a.id, b.id) })
	return out
}

// score requires a.id < b.id.
func score(a, b *profile, minShared int) (Score, bool) {
	shared, sumMin, sumMax := 0, 0, 0
	small, large := a.points, b.points
	if len(large) < len(small) {
		small, large = large, small
	}
	for key, x := range small {
		y, ok := large[key]
		if !ok {
			continue
		}
		shared++
		sumMin += min(x, y)
		sumMax += max(x, y)
	}
	if shared < minShared {
		return Score{}, false
	}

	s := Score{Pair: Pair{A: a.id, B: b.id}, SharedVotes: shared}

	if sumMax == 0 {
		s.Compatibility = 100
	} else {
		s.Compatibility = float64(sumMin*100) / float64(sumMax)
	}

	// sum over v of min(cA[v]/nA, cB[v]/nB), scaled by nA*nB to stay integral.
	inter := 0
	for value, ca := range a.histogram {
		if cb, ok := b.histogram[value]; ok {
			inter += min(ca*b.votes, cb*a.votes)
		}
	}
	s.Similarity = float64(inter*100) / float64(a.votes*b.votes)

	s.MutualSupport = mutualSupport(a.given[b.id], a.total, b.given[a.id], b.total)
	return s, true
}

// mutualSupport averages gAB/tA and gBA/tB as a percentage. A side that gave
// no points at all contributes zero.
func mutualSupport(gAB, tA, gBA, tB int) float64 {
	switch {
	case tA > 0 && tB > 0:
		return float64((gAB*tB+gBA*tA)*100) / float64(2*tA*tB)
	case tA > 0:
		return float64(gAB*100) / float64(2*tA)
	case tB > 0:
		return float64(gBA*100) / float64(2*tB)
	default:
		return 0
	}
}
