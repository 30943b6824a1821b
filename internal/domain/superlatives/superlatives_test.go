package superlatives_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/wrapped/internal/domain/model"
	"github.com/okian/wrapped/internal/domain/pairing"
	"github.com/okian/wrapped/internal/domain/rounds"
	"github.com/okian/wrapped/internal/domain/standings"
	"github.com/okian/wrapped/internal/domain/superlatives"
	. "github.com/smartystreets/goconvey/convey"
)

func aggregate(round string, subs [][2]string, votes []model.Vote) rounds.Result {
	ss := make([]model.Submission, len(subs))
	for i, s := range subs {
		ss[i] = model.Submission{RoundID: round, SubmitterID: s[0], TrackID: s[1]}
	}
	for i := range votes {
		votes[i].RoundID = round
	}
	res, err := rounds.Aggregate(model.Round{ID: round}, ss, votes)
	if err != nil {
		panic(err)
	}
	return res
}

func exampleEnv(popularity map[string]superlatives.Popularity) *superlatives.Env {
	results := []rounds.Result{
		aggregate("r1", [][2]string{{"x", "A"}, {"y", "B"}}, []model.Vote{
			{TrackID: "A", VoterID: "z", Points: 3, Sequence: 1},
			{TrackID: "B", VoterID: "z", Points: 2, Sequence: 1},
			{TrackID: "A", VoterID: "y", Points: 5, Sequence: 2, Comment: "instant classic"},
		}),
		aggregate("r2", [][2]string{{"y", "C"}, {"z", "D"}}, []model.Vote{
			{TrackID: "C", VoterID: "x", Points: 4, Sequence: 1, Comment: "tough call"},
			{TrackID: "D", VoterID: "x", Points: 4, Sequence: 1},
		}),
	}
	pairs, err := pairing.Build(context.Background(), results, pairing.DefaultOptions(), model.Sequential)
	if err != nil {
		panic(err)
	}
	return superlatives.NewEnv(standings.Aggregate(results), pairs.Scores, popularity)
}

func byKey(awards []superlatives.Award) map[string]superlatives.Award {
	out := map[string]superlatives.Award{}
	for _, a := range awards {
		out[a.Key] = a
	}
	return out
}

func TestResolveExampleSeason(t *testing.T) {
	Convey("Given the two-round example season", t, func() {
		env := exampleEnv(nil)
		rules := superlatives.DefaultRules(superlatives.Thresholds{MinSubmissions: 1, MinRoundsVoted: 1})
		awards := superlatives.Resolve(rules, env)
		got := byKey(awards)

		Convey("Then every category is present exactly once, in rule order", func() {
			So(len(awards), ShouldEqual, len(rules))
			for i := range rules {
				So(awards[i].Key, ShouldEqual, rules[i].Key)
			}
		})

		Convey("Then Most Popular goes to X with 8", func() {
			a := got[superlatives.KeyMostPopular]
			So(a.Applicable, ShouldBeTrue)
			So(a.Competitors, ShouldResemble, []string{"x"})
			So(a.Value, ShouldEqual, 8)
		})

		Convey("Then the submitter extremes and middle are found", func() {
			So(got[superlatives.KeyMostLikelyLose].Competitors, ShouldResemble, []string{"z"})
			m, ok := env.Median()
			So(ok, ShouldBeTrue)
			So(m, ShouldEqual, 6)
			So(got[superlatives.KeyMostAverage].Competitors, ShouldResemble, []string{"y"})
			So(got[superlatives.KeyMostAverage].Value, ShouldEqual, 0)
			So(got[superlatives.KeyBestPerformance].Competitors, ShouldResemble, []string{"x"})
		})

		Convey("Then competitors tied on rounds won are co-winners", func() {
			a := got[superlatives.KeyRoundChampion]
			So(a.Competitors, ShouldResemble, []string{"x", "y", "z"})
			So(a.Value, ShouldEqual, 1)
		})

		Convey("Then the only eligible pair is both most and least compatible", func() {
			want := []pairing.Pair{{A: "y", B: "z"}}
			So(got[superlatives.KeyMostCompatible].Pairs, ShouldResemble, want)
			So(got[superlatives.KeyLeastCompatible].Pairs, ShouldResemble, want)
			So(got[superlatives.KeyMostCompatible].Value, ShouldEqual, 60)
			So(got[superlatives.KeyMostCompatible].Winners(), ShouldResemble, []string{"y+z"})
		})

		Convey("Then vote timing ties are kept", func() {
			So(got[superlatives.KeyVoteFirst].Competitors, ShouldResemble, []string{"x", "z"})
			So(got[superlatives.KeyVoteLast].Competitors, ShouldResemble, []string{"y"})
		})

		Convey("Then comment awards count non-blank comments", func() {
			So(got[superlatives.KeyChattyCathy].Competitors, ShouldResemble, []string{"x", "y"})
			So(got[superlatives.KeyTheAuthor].Competitors, ShouldResemble, []string{"x", "y"})
			So(got[superlatives.KeyWordsmith].Competitors, ShouldResemble, []string{"y"})
		})

		Convey("Then popularity awards are not applicable without annotations", func() {
			a := got[superlatives.KeyCrowdPleaser]
			So(a.Applicable, ShouldBeFalse)
			So(a.Reason, ShouldEqual, superlatives.ErrInsufficientData.Error())
			So(a.Competitors, ShouldBeEmpty)
		})
	})

	Convey("Given popularity annotations", t, func() {
		env := exampleEnv(map[string]superlatives.Popularity{
			"x": {Total: 80, Tracks: 1},
			"y": {Total: 100, Tracks: 2},
			"z": {Total: 20, Tracks: 1},
		})
		got := byKey(superlatives.Resolve(superlatives.DefaultRules(superlatives.Thresholds{}), env))

		Convey("Then mean popularity picks the crowd pleaser and trend setter", func() {
			So(got[superlatives.KeyCrowdPleaser].Competitors, ShouldResemble, []string{"x"})
			So(got[superlatives.KeyCrowdPleaser].Value, ShouldEqual, 80)
			So(got[superlatives.KeyTrendSetter].Competitors, ShouldResemble, []string{"z"})
		})
	})
}

func TestResolveSilentSeason(t *testing.T) {
	Convey("Given three submitters who each vote twice without commenting", t, func() {
		results := []rounds.Result{
			aggregate("r1", [][2]string{{"a", "A"}, {"b", "B"}, {"c", "C"}}, []model.Vote{
				{TrackID: "B", VoterID: "a", Points: 1, Sequence: 1},
				{TrackID: "C", VoterID: "a", Points: 1, Sequence: 1},
				{TrackID: "A", VoterID: "b", Points: 1, Sequence: 2},
				{TrackID: "C", VoterID: "b", Points: 1, Sequence: 2},
				{TrackID: "A", VoterID: "c", Points: 1, Sequence: 3},
				{TrackID: "B", VoterID: "c", Points: 1, Sequence: 3},
			}),
		}
		env := superlatives.NewEnv(standings.Aggregate(results), nil, nil)
		got := byKey(superlatives.Resolve(superlatives.DefaultRules(superlatives.Thresholds{}), env))

		Convey("Then the comment awards list all three at zero", func() {
			for _, k := range []string{superlatives.KeyChattyCathy, superlatives.KeyTheAuthor} {
				So(got[k].Applicable, ShouldBeTrue)
				So(got[k].Reason, ShouldBeEmpty)
				So(got[k].Competitors, ShouldResemble, []string{"a", "b", "c"})
				So(got[k].Value, ShouldEqual, 0)
			}
		})

		Convey("Then the all-way tie on points is shared too", func() {
			So(got[superlatives.KeyMostPopular].Competitors, ShouldResemble, []string{"a", "b", "c"})
			So(got[superlatives.KeyRoundChampion].Competitors, ShouldResemble, []string{"a", "b", "c"})
		})
	})
}

func TestResolveThresholds(t *testing.T) {
	Convey("Given thresholds nobody meets", t, func() {
		env := exampleEnv(nil)
		got := byKey(superlatives.Resolve(superlatives.DefaultRules(superlatives.Thresholds{MinSubmissions: 5, MinRoundsVoted: 3}), env))

		Convey("Then the gated categories are not applicable but still present", func() {
			So(got[superlatives.KeyBestPerformance].Applicable, ShouldBeFalse)
			So(got[superlatives.KeyVoteFirst].Applicable, ShouldBeFalse)
			So(got[superlatives.KeyVoteLast].Applicable, ShouldBeFalse)
			So(got[superlatives.KeyMostPopular].Applicable, ShouldBeTrue)
		})
	})

	Convey("Given a best performance threshold only one competitor meets", t, func() {
		env := exampleEnv(nil)
		got := byKey(superlatives.Resolve(superlatives.DefaultRules(superlatives.Thresholds{MinSubmissions: 2}), env))

		Convey("Then single-submission outliers are skipped", func() {
			So(got[superlatives.KeyBestPerformance].Competitors, ShouldResemble, []string{"y"})
			So(got[superlatives.KeyBestPerformance].Value, ShouldEqual, 3)
		})
	})

	Convey("Given no pairs and no comments", t, func() {
		stats := []standings.Stats{
			{CompetitorID: "a", SubmissionCount: 1, RoundsEntered: 1, TotalPointsReceived: 3, VotesCast: 1},
			{CompetitorID: "b", SubmissionCount: 1, RoundsEntered: 1, TotalPointsReceived: 3, VotesCast: 1},
		}
		got := byKey(superlatives.Resolve(superlatives.DefaultRules(superlatives.Thresholds{}), superlatives.NewEnv(stats, nil, nil)))

		Convey("Then pair categories are not applicable", func() {
			for _, k := range []string{superlatives.KeyMostCompatible, superlatives.KeyLeastCompatible, superlatives.KeyMostSimilar, superlatives.KeyLeastSimilar} {
				So(got[k].Applicable, ShouldBeFalse)
				So(got[k].Reason, ShouldEqual, superlatives.ErrInsufficientData.Error())
			}
		})

		Convey("Then a shared count of zero makes everyone a co-winner", func() {
			for _, k := range []string{superlatives.KeyChattyCathy, superlatives.KeyTheAuthor, superlatives.KeyRoundChampion} {
				So(got[k].Applicable, ShouldBeTrue)
				So(got[k].Competitors, ShouldResemble, []string{"a", "b"})
				So(got[k].Value, ShouldEqual, 0)
			}
		})

		Convey("Then Wordsmith stays gated on having written a comment", func() {
			So(got[superlatives.KeyWordsmith].Applicable, ShouldBeFalse)
		})

		Convey("Then an exact tie on the primary metric keeps both", func() {
			So(got[superlatives.KeyMostPopular].Competitors, ShouldResemble, []string{"a", "b"})
			So(got[superlatives.KeyMostLikelyLose].Competitors, ShouldResemble, []string{"a", "b"})
		})
	})

	Convey("Given an even number of submitters", t, func() {
		stats := []standings.Stats{
			{CompetitorID: "a", SubmissionCount: 1, TotalPointsReceived: 1},
			{CompetitorID: "b", SubmissionCount: 1, TotalPointsReceived: 4},
			{CompetitorID: "c", SubmissionCount: 1, TotalPointsReceived: 6},
			{CompetitorID: "d", SubmissionCount: 1, TotalPointsReceived: 9},
		}
		env := superlatives.NewEnv(stats, nil, nil)
		got := byKey(superlatives.Resolve(superlatives.DefaultRules(superlatives.Thresholds{}), env))

		Convey("Then the median is the mean of the middle two and ties stay together", func() {
			m, _ := env.Median()
			So(m, ShouldEqual, 5)
			So(got[superlatives.KeyMostAverage].Competitors, ShouldResemble, []string{"b", "c"})
			So(got[superlatives.KeyMostAverage].Value, ShouldEqual, 1)
		})
	})

	Convey("Given an empty season", t, func() {
		awards := superlatives.Resolve(superlatives.DefaultRules(superlatives.Thresholds{}), superlatives.NewEnv(nil, nil, nil))

		Convey("Then every award is present and not applicable", func() {
			So(len(awards), ShouldEqual, len(superlatives.Keys()))
			for _, a := range awards {
				So(a.Applicable, ShouldBeFalse)
			}
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Given configured award keys", t, func() {
		th := superlatives.Thresholds{MinSubmissions: 1, MinRoundsVoted: 1}

		Convey("When none are given", func() {
			rules, err := superlatives.Lookup(nil, th)

			Convey("Then every default rule is returned", func() {
				So(err, ShouldBeNil)
				So(len(rules), ShouldEqual, len(superlatives.Keys()))
			})
		})

		Convey("When a subset is given", func() {
			rules, err := superlatives.Lookup([]string{superlatives.KeyVoteLast, superlatives.KeyMostPopular}, th)

			Convey("Then the configured order is kept", func() {
				So(err, ShouldBeNil)
				So(rules[0].Key, ShouldEqual, superlatives.KeyVoteLast)
				So(rules[1].Key, ShouldEqual, superlatives.KeyMostPopular)
			})
		})

		Convey("When an unknown key is given", func() {
			_, err := superlatives.Lookup([]string{"most_mysterious"}, th)
			So(errors.Is(err, superlatives.ErrUnknownRule), ShouldBeTrue)
			So(err.Error(), ShouldNotContainSubstring, "did you mean")
		})

		Convey("When a known key is misspelled", func() {
			_, err := superlatives.Lookup([]string{"most_popluar"}, th)

			Convey("Then the nearest key is suggested", func() {
				So(errors.Is(err, superlatives.ErrUnknownRule), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, `did you mean "most_popular"`)
			})
		})

		Convey("When a key is repeated", func() {
			_, err := superlatives.Lookup([]string{superlatives.KeyMostPopular, superlatives.KeyMostPopular}, th)
			So(errors.Is(err, superlatives.ErrDuplicateRule), ShouldBeTrue)
		})
	})
}
