package pairing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/wrapped/internal/adapters/mq/worker"
	"github.com/okian/wrapped/internal/domain/model"
	"github.com/okian/wrapped/internal/domain/pairing"
	"github.com/okian/wrapped/internal/domain/rounds"
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

func v(track, voter string, points, seq int) model.Vote {
	return model.Vote{TrackID: track, VoterID: voter, Points: points, Sequence: seq}
}

func byPair(scores []pairing.Score) map[pairing.Pair]pairing.Score {
	out := map[pairing.Pair]pairing.Score{}
	for _, s := range scores {
		out[s.Pair] = s
	}
	return out
}

func TestPair(t *testing.T) {
	Convey("Given two competitor IDs in either order", t, func() {
		p := pairing.NewPair("zed", "amy")

		Convey("Then the pair is ordered", func() {
			So(p, ShouldResemble, pairing.Pair{A: "amy", B: "zed"})
			So(pairing.NewPair("amy", "zed"), ShouldResemble, p)
			So(p.Other("amy"), ShouldEqual, "zed")
			So(p.Has("zed"), ShouldBeTrue)
			So(p.Has("bob"), ShouldBeFalse)
			So(p.String(), ShouldEqual, "amy+zed")
		})
	})
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	Convey("Given the two-round example season", t, func() {
		results := []rounds.Result{
			aggregate("r1", [][2]string{{"x", "A"}, {"y", "B"}}, []model.Vote{
				v("A", "z", 3, 1), v("B", "z", 2, 1), v("A", "y", 5, 2),
			}),
			aggregate("r2", [][2]string{{"y", "C"}, {"z", "D"}}, []model.Vote{
				v("C", "x", 4, 1), v("D", "x", 4, 1),
			}),
		}

		out, err := pairing.Build(ctx, results, pairing.DefaultOptions(), model.Sequential)

		Convey("Then only pairs with a shared submission are scored", func() {
			So(err, ShouldBeNil)
			So(len(out.Scores), ShouldEqual, 1)
			So(out.Excluded, ShouldEqual, 2)
		})

		Convey("Then the scores follow the formulas", func() {
			s := out.Scores[0]
			So(s.Pair, ShouldResemble, pairing.Pair{A: "y", B: "z"})
			So(s.SharedVotes, ShouldEqual, 1)
			So(s.Compatibility, ShouldEqual, 60)
			So(s.Similarity, ShouldEqual, 0)
			So(s.MutualSupport, ShouldEqual, 20)
		})
	})

	Convey("Given voters with identical ballots", t, func() {
		results := []rounds.Result{
			aggregate("r1", [][2]string{{"s", "A"}, {"t", "B"}}, []model.Vote{
				v("A", "p", 3, 1), v("B", "p", 1, 1),
				v("A", "q", 3, 2), v("B", "q", 1, 2),
			}),
		}
		out, err := pairing.Build(ctx, results, pairing.DefaultOptions(), model.Sequential)

		Convey("Then compatibility and similarity are both 100", func() {
			So(err, ShouldBeNil)
			s := byPair(out.Scores)[pairing.NewPair("p", "q")]
			So(s.Compatibility, ShouldEqual, 100)
			So(s.Similarity, ShouldEqual, 100)
		})
	})

	Convey("Given voters who both gave zero to every shared track", t, func() {
		results := []rounds.Result{
			aggregate("r1", [][2]string{{"s", "A"}}, []model.Vote{v("A", "p", 0, 1), v("A", "q", 0, 2)}),
		}
		out, _ := pairing.Build(ctx, results, pairing.DefaultOptions(), model.Sequential)

		Convey("Then they agree fully", func() {
			So(out.Scores[0].Compatibility, ShouldEqual, 100)
			So(out.Scores[0].MutualSupport, ShouldEqual, 0)
		})
	})

	Convey("Given two pairs whose ratios are equal rationals", t, func() {
		results := []rounds.Result{
			// p/q: min/max = 1/2. r/s: (1+1)/(2+2) = 2/4.
			aggregate("r1", [][2]string{{"o", "A"}, {"n", "B"}}, []model.Vote{
				v("A", "p", 1, 1), v("A", "q", 2, 2),
				v("A", "r", 1, 3), v("B", "r", 1, 3),
				v("A", "s", 2, 4), v("B", "s", 2, 4),
			}),
		}
		out, err := pairing.Build(ctx, results, pairing.Options{MinSharedVotes: 1}, model.Sequential)
		scores := byPair(out.Scores)

		Convey("Then their scores compare exactly equal", func() {
			So(err, ShouldBeNil)
			pq := scores[pairing.NewPair("p", "q")]
			rs := scores[pairing.NewPair("r", "s")]
			So(pq.Compatibility, ShouldEqual, 50)
			So(pq.Compatibility == rs.Compatibility, ShouldBeTrue)
		})
	})

	Convey("Given a voter who voted on their own submission", t, func() {
		results := []rounds.Result{
			aggregate("r1", [][2]string{{"p", "A"}, {"s", "B"}}, []model.Vote{
				v("A", "p", 5, 1), v("B", "p", 1, 1),
				v("A", "q", 1, 2), v("B", "q", 1, 2),
			}),
		}

		Convey("When self-votes are excluded", func() {
			out, _ := pairing.Build(ctx, results, pairing.Options{MinSharedVotes: 1, ExcludeSelfVotes: true}, model.Sequential)
			s := out.Scores[0]

			Convey("Then only the other submission is shared", func() {
				So(s.SharedVotes, ShouldEqual, 1)
				So(s.Compatibility, ShouldEqual, 100)
			})
		})

		Convey("When self-votes are kept", func() {
			out, _ := pairing.Build(ctx, results, pairing.Options{MinSharedVotes: 1}, model.Sequential)
			s := out.Scores[0]

			Convey("Then the self-vote counts as shared", func() {
				So(s.SharedVotes, ShouldEqual, 2)
				So(s.Compatibility, ShouldEqual, float64(200)/6)
			})
		})
	})

	Convey("Given a minimum overlap above what any pair shares", t, func() {
		results := []rounds.Result{
			aggregate("r1", [][2]string{{"s", "A"}}, []model.Vote{v("A", "p", 1, 1), v("A", "q", 1, 2)}),
		}
		out, err := pairing.Build(ctx, results, pairing.Options{MinSharedVotes: 2}, model.Sequential)

		Convey("Then the pair is absent rather than given a sentinel", func() {
			So(err, ShouldBeNil)
			So(out.Scores, ShouldBeEmpty)
			So(out.Excluded, ShouldEqual, 1)
		})
	})

	Convey("Given two voters with different ballots who submit to each other", t, func() {
		season := func(p, q string) []rounds.Result {
			return []rounds.Result{
				aggregate("r1", [][2]string{{p, "A"}, {q, "B"}, {"s", "C"}}, []model.Vote{
					v("B", p, 3, 1), v("C", p, 1, 1),
					v("A", q, 1, 2), v("C", q, 4, 2),
					v("A", "s", 2, 3), v("B", "s", 2, 3),
				}),
				aggregate("r2", [][2]string{{"s", "D"}, {"t", "E"}}, []model.Vote{
					v("D", p, 2, 1), v("E", p, 3, 1),
					v("D", q, 5, 2), v("E", q, 0, 2),
				}),
			}
		}

		out, err1 := pairing.Build(ctx, season("p", "q"), pairing.DefaultOptions(), model.Sequential)
		swapped, err2 := pairing.Build(ctx, season("q", "p"), pairing.DefaultOptions(), model.Sequential)

		Convey("Then swapping their IDs leaves the pair score unchanged", func() {
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			a := byPair(out.Scores)[pairing.NewPair("p", "q")]
			b := byPair(swapped.Scores)[pairing.NewPair("q", "p")]
			So(a.SharedVotes, ShouldEqual, 3)
			So(a.MutualSupport, ShouldBeGreaterThan, 0)
			So(b.SharedVotes, ShouldEqual, a.SharedVotes)
			So(b.Compatibility, ShouldEqual, a.Compatibility)
			So(b.Similarity, ShouldEqual, a.Similarity)
			So(b.MutualSupport, ShouldEqual, a.MutualSupport)
		})
	})

	Convey("Given a non-positive minimum overlap", t, func() {
		_, err := pairing.Build(ctx, nil, pairing.Options{}, model.Sequential)

		Convey("Then the options are rejected", func() {
			So(errors.Is(err, pairing.ErrInvalidOptions), ShouldBeTrue)
		})
	})

	Convey("Given many voters scored on a pool", t, func() {
		var votes []model.Vote
		voters := []string{"a", "b", "c", "d", "e", "f"}
		for i, voter := range voters {
			votes = append(votes, v("A", voter, i%3, i+1), v("B", voter, 2-i%3, i+1))
		}
		results := []rounds.Result{aggregate("r1", [][2]string{{"s", "A"}, {"t", "B"}}, votes)}

		seq, err1 := pairing.Build(ctx, results, pairing.DefaultOptions(), model.Sequential)
		par, err2 := pairing.Build(ctx, results, pairing.DefaultOptions(), worker.NewPool(4))

		Convey("Then the result matches the sequential run in order", func() {
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(len(seq.Scores), ShouldEqual, 15)
			So(par.Scores, ShouldResemble, seq.Scores)
			So(par.Scores[0].Pair, ShouldResemble, pairing.Pair{A: "a", B: "b"})
		})
	})
}
