// Package standings rolls round aggregates up into season statistics per
// competitor, both as submitter and as voter.
package standings

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/okian/wrapped/internal/domain/rounds"
)

// Stats is the season record of one competitor. Fields guarded by a Has*
// flag are meaningless when the flag is false.
type Stats struct {
	CompetitorID string

	// As submitter.
	SubmissionCount       int
	RoundsEntered         int
	TotalPointsReceived   int
	AveragePointsReceived float64
	HasAverage            bool
	BestSubmissionPoints  int
	RoundsWon             int
	CommentsReceived      int

	// As voter.
	PointsGiven     int
	VotesCast       int
	RoundsVoted     int
	CommentsWritten int
	TopVote         int

	// LongestCommentLength is in runes, over vote comments and the
	// competitor's own submission comments.
	LongestCommentLength int

	// VotePositions holds the 1-based voting position for each round
	// voted, in round order.
	VotePositions    []int
	MeanVotePosition float64
	ModeVotePosition int
	HasVotePosition  bool

	// BiggestFan is the other voter who gave this competitor the largest
	// share of their own points. BiggestFanShare is that share in percent.
	BiggestFan      string
	BiggestFanShare float64
	HasBiggestFan   bool
}

type accumulator struct {
	Stats
	positionSum int
	// points received from each voter
	received map[string]int
}

// Aggregate builds one Stats per competitor that submitted or voted at least
// once, ordered by competitor ID.
func Aggregate(results []rounds.Result) []Stats {
	acc := map[string]*accumulator{}
	get := func(id string) *accumulator {
		a, ok := acc[id]
		if !ok {
			a = &accumulator{Stats: Stats{CompetitorID: id}, received: map[string]int{}}
			acc[id] = a
		}
		return a
	}
	// total points each voter handed out
	given := map[string]int{}

	for i := range results {
		res := &results[i]
		submitterOf := make(map[string]string, len(res.Submissions))

		for _, t := range res.Submissions {
			s := t.Submission
			submitterOf[s.TrackID] = s.SubmitterID
			a := get(s.SubmitterID)
			a.SubmissionCount++
			a.RoundsEntered++
			a.TotalPointsReceived += t.Points
			a.CommentsReceived += t.Comments
			if a.SubmissionCount == 1 || t.Points > a.BestSubmissionPoints {
				a.BestSubmissionPoints = t.Points
			}
			a.LongestCommentLength = max(a.LongestCommentLength, commentLength(s.Comment))
			if res.Won(s.SubmitterID) {
				a.RoundsWon++
			}
		}

		for pos, voter := range voterOrder(res) {
			a := get(voter)
			a.RoundsVoted++
			a.VotePositions = append(a.VotePositions, pos+1)
			a.positionSum += pos + 1
		}

		for _, v := range res.Votes {
			a := get(v.VoterID)
			a.VotesCast++
			a.PointsGiven += v.Points
			a.TopVote = max(a.TopVote, v.Points)
			if v.HasComment() {
				a.CommentsWritten++
			}
			a.LongestCommentLength = max(a.LongestCommentLength, commentLength(v.Comment))
			given[v.VoterID] += v.Points
			if submitter, ok := submitterOf[v.TrackID]; ok {
				get(submitter).received[v.VoterID] += v.Points
			}
		}
	}

	out := make([]Stats, 0, len(acc))
	for _, a := range acc {
		if a.SubmissionCount > 0 {
			a.HasAverage = true
			a.AveragePointsReceived = float64(a.TotalPointsReceived) / float64(a.SubmissionCount)
		}
		if a.RoundsVoted > 0 {
			a.HasVotePosition = true
			a.MeanVotePosition = float64(a.positionSum) / float64(a.RoundsVoted)
			a.ModeVotePosition = mode(a.VotePositions)
		}
		a.findBiggestFan(given)
		out = append(out, a.Stats)
	}
	slices.SortFunc(out, func(x, y Stats) int { return cmp.Compare(x.CompetitorID, y.CompetitorID) })
	return out
}

// findBiggestFan compares shares g/t exactly by cross-multiplying. Ties go
// to the smaller voter ID.
func (a *accumulator) findBiggestFan(given map[string]int) {
	var bestG, bestT int
	for voter, g := range a.received {
		t := given[voter]
		if voter == a.CompetitorID || g == 0 || t == 0 {
			continue
		}
		if !a.HasBiggestFan {
			a.HasBiggestFan, a.BiggestFan, bestG, bestT = true, voter, g, t
			continue
		}
		lhs, rhs := g*bestT, bestG*t
		if lhs > rhs || (lhs == rhs && voter < a.BiggestFan) {
			a.BiggestFan, bestG, bestT = voter, g, t
		}
	}
	if a.HasBiggestFan {
		a.BiggestFanShare = float64(bestG*100) / float64(bestT)
	}
}

// voterOrder ranks a round's voters by their earliest Sequence, ties broken
// by voter ID. Votes arrive sorted by (Sequence, voter), so first sight wins.
func voterOrder(res *rounds.Result) []string {
	seen := map[string]bool{}
	var order []string
	for _, v := range res.Votes {
		if !seen[v.VoterID] {
			seen[v.VoterID] = true
			order = append(order, v.VoterID)
		}
	}
	return order
}

// mode returns the most frequent value, the smallest one on ties.
func mode(values []int) int {
	counts := map[int]int{}
	best, bestCount := 0, 0
	for _, v := range values {
		counts[v]++
	}
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best
}

// commentLength counts runes after NFC so composed and decomposed accents
// measure the same.
func commentLength(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(strings.TrimSpace(s)))
}

// Index maps competitor ID to its stats.
func Index(stats []Stats) map[string]*Stats {
	idx := make(map[string]*Stats, len(stats))
	for i := range stats {
		idx[stats[i].CompetitorID] = &stats[i]
	}
	return idx
}
