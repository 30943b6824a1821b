// Package types contains the JSON views of the season report served by the API.
package types

import (
	"time"

	"github.com/okian/wrapped/internal/domain/pairing"
	"github.com/okian/wrapped/internal/domain/report"
	"github.com/okian/wrapped/internal/domain/rounds"
	"github.com/okian/wrapped/internal/domain/standings"
	"github.com/okian/wrapped/internal/domain/superlatives"
)

// Competitor is a competitor's season statistics.
type Competitor struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Submissions      int      `json:"submissions"`
	RoundsEntered    int      `json:"rounds_entered"`
	PointsReceived   int      `json:"points_received"`
	AveragePoints    *float64 `json:"average_points,omitempty"`
	BestSubmission   int      `json:"best_submission_points"`
	RoundsWon        int      `json:"rounds_won"`
	CommentsReceived int      `json:"comments_received"`

	PointsGiven     int `json:"points_given"`
	VotesCast       int `json:"votes_cast"`
	RoundsVoted     int `json:"rounds_voted"`
	CommentsWritten int `json:"comments_written"`
	TopVote         int `json:"top_vote"`
	LongestComment  int `json:"longest_comment"`

	VotePositions    []int    `json:"vote_positions,omitempty"`
	MeanVotePosition *float64 `json:"mean_vote_position,omitempty"`
	ModeVotePosition *int     `json:"mode_vote_position,omitempty"`

	BiggestFan      string   `json:"biggest_fan,omitempty"`
	BiggestFanShare *float64 `json:"biggest_fan_share,omitempty"`

	MeanPopularity *float64 `json:"mean_popularity,omitempty"`
}

// NewCompetitor converts stats. Optional figures are omitted when undefined.
func NewCompetitor(s standings.Stats, name string, pop superlatives.Popularity) Competitor {
	c := Competitor{
		ID:               s.CompetitorID,
		Name:             name,
		Submissions:      s.SubmissionCount,
		RoundsEntered:    s.RoundsEntered,
		PointsReceived:   s.TotalPointsReceived,
		BestSubmission:   s.BestSubmissionPoints,
		RoundsWon:        s.RoundsWon,
		CommentsReceived: s.CommentsReceived,
		PointsGiven:      s.PointsGiven,
		VotesCast:        s.VotesCast,
		RoundsVoted:      s.RoundsVoted,
		CommentsWritten:  s.CommentsWritten,
		TopVote:          s.TopVote,
		LongestComment:   s.LongestCommentLength,
		VotePositions:    s.VotePositions,
	}
	if s.HasAverage {
		c.AveragePoints = &s.AveragePointsReceived
	}
	if s.HasVotePosition {
		c.MeanVotePosition = &s.MeanVotePosition
		c.ModeVotePosition = &s.ModeVotePosition
	}
	if s.HasBiggestFan {
		c.BiggestFan = s.BiggestFan
		c.BiggestFanShare = &s.BiggestFanShare
	}
	if pop.Tracks > 0 {
		m := float64(pop.Total) / float64(pop.Tracks)
		c.MeanPopularity = &m
	}
	return c
}

// Pair is the score of one unordered competitor pair.
type Pair struct {
	A             string  `json:"a"`
	B             string  `json:"b"`
	SharedVotes   int     `json:"shared_votes"`
	Compatibility float64 `json:"compatibility"`
	Similarity    float64 `json:"similarity"`
	MutualSupport float64 `json:"mutual_support"`
}

// NewPair converts a pair score.
func NewPair(s pairing.Score) Pair {
	return Pair{
		A:             s.Pair.A,
		B:             s.Pair.B,
		SharedVotes:   s.SharedVotes,
		Compatibility: s.Compatibility,
		Similarity:    s.Similarity,
		MutualSupport: s.MutualSupport,
	}
}

// Award is one resolved superlative. Winners are competitor IDs or
// "a+b" pair labels.
type Award struct {
	Key        string      `json:"key"`
	Category   string      `json:"category"`
	Subject    string      `json:"subject"`
	Direction  string      `json:"direction"`
	Winners    []string    `json:"winners"`
	Pairs      [][2]string `json:"pairs,omitempty"`
	Value      *float64    `json:"value,omitempty"`
	Applicable bool        `json:"applicable"`
	Reason     string      `json:"reason,omitempty"`
}

// NewAward converts an award. Value is omitted when not applicable.
func NewAward(a superlatives.Award) Award {
	out := Award{
		Key:        a.Key,
		Category:   a.Category,
		Subject:    string(a.Subject),
		Direction:  string(a.Direction),
		Winners:    a.Winners(),
		Applicable: a.Applicable,
		Reason:     a.Reason,
	}
	if out.Winners == nil {
		out.Winners = []string{}
	}
	for _, p := range a.Pairs {
		out.Pairs = append(out.Pairs, [2]string{p.A, p.B})
	}
	if a.Applicable {
		v := a.Value
		out.Value = &v
	}
	return out
}

// NewAwards converts a list of awards.
func NewAwards(awards []superlatives.Award) []Award {
	out := make([]Award, len(awards))
	for i, a := range awards {
		out[i] = NewAward(a)
	}
	return out
}

// Entry is one submission's total within a round.
type Entry struct {
	SubmitterID string `json:"submitter_id"`
	TrackID     string `json:"track_id"`
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Points      int    `json:"points"`
	Votes       int    `json:"votes"`
	Comments    int    `json:"comments"`
	Winner      bool   `json:"winner"`
}

// Round is one round's aggregate.
type Round struct {
	ID          string   `json:"id"`
	Position    int      `json:"position"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	MaxPoints   int      `json:"max_points"`
	Winners     []string `json:"winners"`
	Entries     []Entry  `json:"entries"`
}

// NewRound converts a round aggregate.
func NewRound(r rounds.Result) Round {
	out := Round{
		ID:          r.Round.ID,
		Position:    r.Round.Position,
		Name:        r.Round.Name,
		Description: r.Round.Description,
		MaxPoints:   r.MaxPoints,
		Winners:     make([]string, 0, len(r.Winners)),
		Entries:     make([]Entry, 0, len(r.Submissions)),
	}
	won := map[string]bool{}
	for _, w := range r.Winners {
		out.Winners = append(out.Winners, w.SubmitterID)
		won[w.TrackID] = true
	}
	for _, s := range r.Submissions {
		out.Entries = append(out.Entries, Entry{
			SubmitterID: s.Submission.SubmitterID,
			TrackID:     s.Submission.TrackID,
			Title:       s.Submission.Title,
			Artist:      s.Submission.Artist,
			Points:      s.Points,
			Votes:       s.Votes,
			Comments:    s.Comments,
			Winner:      won[s.Submission.TrackID],
		})
	}
	return out
}

// Partner is the best match for a competitor on one pair metric.
type Partner struct {
	CompetitorID string  `json:"competitor_id"`
	Value        float64 `json:"value"`
}

// Wrapped is a competitor's personal season summary.
type Wrapped struct {
	Competitor
	Awards         []Award  `json:"awards"`
	MostCompatible *Partner `json:"most_compatible,omitempty"`
	MostSimilar    *Partner `json:"most_similar,omitempty"`
}

// NewWrapped converts a competitor summary.
func NewWrapped(w report.Wrapped, name string) Wrapped {
	out := Wrapped{
		Competitor: NewCompetitor(w.Stats, name, w.Popularity),
		Awards:     NewAwards(w.Awards),
	}
	if p := w.MostCompatible; p != nil {
		out.MostCompatible = &Partner{CompetitorID: p.CompetitorID, Value: p.Score.Compatibility}
	}
	if p := w.MostSimilar; p != nil {
		out.MostSimilar = &Partner{CompetitorID: p.CompetitorID, Value: p.Score.Similarity}
	}
	return out
}

// Summary describes the current report.
type Summary struct {
	RunID         string    `json:"run_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	Competitors   int       `json:"competitors"`
	Rounds        int       `json:"rounds"`
	Submissions   int       `json:"submissions"`
	Votes         int       `json:"votes"`
	Pairs         int       `json:"pairs"`
	ExcludedPairs int       `json:"excluded_pairs"`
	Awards        int       `json:"awards"`
	Applicable    int       `json:"applicable_awards"`
	Annotated     int       `json:"annotated_tracks"`
	Workers       int       `json:"workers"`
}
