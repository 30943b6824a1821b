package superlatives

import (
	"fmt"

	"github.com/agnivade/levenshtein"
)

// Award keys.
const (
	KeyMostPopular     = "most_popular"
	KeyMostLikelyLose  = "most_likely_to_lose"
	KeyMostAverage     = "most_average"
	KeyBestPerformance = "best_performance"
	KeyTopTrack        = "top_track"
	KeyRoundChampion   = "round_champion"
	KeyChattyCathy     = "chatty_cathy"
	KeyTheAuthor       = "the_author"
	KeyWordsmith       = "wordsmith"
	KeyMostCompatible  = "most_compatible"
	KeyLeastCompatible = "least_compatible"
	KeyMostSimilar     = "most_similar"
	KeyLeastSimilar    = "least_similar"
	KeyVoteFirst       = "vote_first"
	KeyVoteLast        = "vote_last"
	KeyCrowdPleaser    = "crowd_pleaser"
	KeyTrendSetter     = "trend_setter"
)

// Thresholds are the configurable minimum samples.
type Thresholds struct {
	MinSubmissions int
	MinRoundsVoted int
}

func submissions(_ *Env, e Entry) int { return e.Stats.SubmissionCount }
func roundsEntered(_ *Env, e Entry) int { return e.Stats.RoundsEntered }
func votesCast(_ *Env, e Entry) int   { return e.Stats.VotesCast }
func roundsVoted(_ *Env, e Entry) int { return e.Stats.RoundsVoted }
func sharedVotes(_ *Env, e Entry) int { return e.Pair.SharedVotes }

func hasComment(_ *Env, e Entry) int {
	if e.Stats.LongestCommentLength > 0 {
		return 1
	}
	return 0
}

func annotatedTracks(env *Env, e Entry) int {
	return env.Popularity[e.Stats.CompetitorID].Tracks
}

func count(f func(e Entry) int) func(*Env, Entry) (float64, bool) {
	return func(_ *Env, e Entry) (float64, bool) { return float64(f(e)), true }
}

func totalPoints(e Entry) int { return e.Stats.TotalPointsReceived }

func averagePoints(_ *Env, e Entry) (float64, bool) {
	return e.Stats.AveragePointsReceived, e.Stats.HasAverage
}

// distanceFromMedian is |total - median|, kept exact by working in halves.
func distanceFromMedian(env *Env, e Entry) (float64, bool) {
	if !env.hasMedian {
		return 0, false
	}
	d := 2*e.Stats.TotalPointsReceived - env.medianTwice
	if d < 0 {
		d = -d
	}
	return float64(d) / 2, true
}

func meanVotePosition(_ *Env, e Entry) (float64, bool) {
	return e.Stats.MeanVotePosition, e.Stats.HasVotePosition
}

func compatibility(_ *Env, e Entry) (float64, bool) { return e.Pair.Compatibility, true }
func similarity(_ *Env, e Entry) (float64, bool)    { return e.Pair.Similarity, true }

func meanPopularity(env *Env, e Entry) (float64, bool) {
	p, ok := env.Popularity[e.Stats.CompetitorID]
	if !ok || p.Tracks == 0 {
		return 0, false
	}
	return float64(p.Total) / float64(p.Tracks), true
}

// DefaultRules returns every award in presentation order.
func DefaultRules(th Thresholds) []Rule {
	minSubs := max(th.MinSubmissions, 1)
	minRounds := max(th.MinRoundsVoted, 1)

	competitor := func(key, category string, metric func(*Env, Entry) (float64, bool), dir Direction, sample func(*Env, Entry) int, minSample int) Rule {
		return Rule{Key: key, Category: category, Subject: SubjectCompetitor, Metric: metric, Direction: dir, Sample: sample, MinSample: minSample}
	}
	pair := func(key, category string, metric func(*Env, Entry) (float64, bool), dir Direction) Rule {
		return Rule{Key: key, Category: category, Subject: SubjectPair, Metric: metric, Direction: dir, Sample: sharedVotes, MinSample: 1}
	}

	return []Rule{
		competitor(KeyMostPopular, "Most Popular", count(totalPoints), Highest, submissions, 1),
		competitor(KeyMostLikelyLose, "Most Likely to Lose", count(totalPoints), Lowest, submissions, 1),
		competitor(KeyMostAverage, "Most Likely to Be Average", distanceFromMedian, Lowest, submissions, 1),
		competitor(KeyBestPerformance, "Best Performance", averagePoints, Highest, submissions, minSubs),
		competitor(KeyTopTrack, "Top Track", count(func(e Entry) int { return e.Stats.BestSubmissionPoints }), Highest, submissions, 1),
		competitor(KeyRoundChampion, "Round Champion", count(func(e Entry) int { return e.Stats.RoundsWon }), Highest, roundsEntered, 1),
		competitor(KeyChattyCathy, "Chatty Cathy", count(func(e Entry) int { return e.Stats.CommentsWritten }), Highest, votesCast, 1),
		competitor(KeyTheAuthor, "The Author", count(func(e Entry) int { return e.Stats.CommentsReceived }), Highest, submissions, 1),
		competitor(KeyWordsmith, "Wordsmith", count(func(e Entry) int { return e.Stats.LongestCommentLength }), Highest, hasComment, 1),
		pair(KeyMostCompatible, "Most Compatible", compatibility, Highest),
		pair(KeyLeastCompatible, "Least Compatible", compatibility, Lowest),
		pair(KeyMostSimilar, "Most Similar", similarity, Highest),
		pair(KeyLeastSimilar, "Least Similar", similarity, Lowest),
		competitor(KeyVoteFirst, "Most Likely to Vote First", meanVotePosition, Lowest, roundsVoted, minRounds),
		competitor(KeyVoteLast, "Most Likely to Vote Last", meanVotePosition, Highest, roundsVoted, minRounds),
		competitor(KeyCrowdPleaser, "Crowd Pleaser", meanPopularity, Highest, annotatedTracks, 1),
		competitor(KeyTrendSetter, "Trend Setter", meanPopularity, Lowest, annotatedTracks, 1),
	}
}

// Lookup selects rules by key in the given order. No keys selects every
// default rule.
func Lookup(keys []string, th Thresholds) ([]Rule, error) {
	all := DefaultRules(th)
	if len(keys) == 0 {
		return all, nil
	}
	byKey := make(map[string]Rule, len(all))
	for _, r := range all {
		byKey[r.Key] = r
	}
	seen := make(map[string]bool, len(keys))
	out := make([]Rule, 0, len(keys))
	for _, k := range keys {
		r, ok := byKey[k]
		if !ok {
			if hint := closestKey(k, all); hint != "" {
				return nil, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownRule, k, hint)
			}
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, k)
		}
		if seen[k] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRule, k)
		}
		seen[k] = true
		out = append(out, r)
	}
	return out, nil
}

// maxKeyDistance bounds how far a typo may be from a known key and still
// be suggested.
const maxKeyDistance = 3

// closestKey returns the rule key nearest to k by edit distance, or "" when
// none is close enough.
func closestKey(k string, rules []Rule) string {
	best, bestDist := "", maxKeyDistance+1
	for _, r := range rules {
		if d := levenshtein.ComputeDistance(k, r.Key); d < bestDist {
			best, bestDist = r.Key, d
		}
	}
	return best
}

// Keys lists the default rule keys in order.
func Keys() []string {
	rules := DefaultRules(Thresholds{})
	keys := make([]string, len(rules))
	for i, r := range rules {
		keys[i] = r.Key
	}
	return keys
}
