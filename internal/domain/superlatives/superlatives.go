// Package superlatives resolves award categories over season statistics and
// pair scores. Every configured category yields exactly one Award: exact ties
// become co-winners and categories nobody qualifies for are reported as not
// applicable.
package superlatives

import (
	"sort"

	"github.com/okian/wrapped/internal/domain/pairing"
	"github.com/okian/wrapped/internal/domain/standings"
)

// Subject is the kind of entity an award goes to.
type Subject string

const (
	SubjectCompetitor Subject = "competitor"
	SubjectPair       Subject = "pair"
)

// Direction picks the winning extreme.
type Direction string

const (
	Highest Direction = "max"
	Lowest  Direction = "min"
)

// Entry is one candidate. Exactly one of Stats and Pair is set, matching
// the rule's Subject.
type Entry struct {
	Stats *standings.Stats
	Pair  *pairing.Score
}

// Rule describes one award category.
type Rule struct {
	Key      string
	Category string
	Subject  Subject
	// Metric returns the candidate's value, or false when it is undefined.
	Metric    func(env *Env, e Entry) (float64, bool)
	Direction Direction
	// Sample returns the candidate's sample size, checked against MinSample.
	Sample    func(env *Env, e Entry) int
	MinSample int
}

// Popularity is the summed popularity of a competitor's annotated tracks.
type Popularity struct {
	Total  int
	Tracks int
}

// Env is the input every rule is evaluated against.
type Env struct {
	Stats      []standings.Stats
	Pairs      []pairing.Score
	Popularity map[string]Popularity

	// twice the median of TotalPointsReceived over submitters
	medianTwice int
	hasMedian   bool
}

// NewEnv prepares an evaluation environment. popularity may be nil.
func NewEnv(stats []standings.Stats, pairs []pairing.Score, popularity map[string]Popularity) *Env {
	env := &Env{Stats: stats, Pairs: pairs, Popularity: popularity}
	var totals []int
	for i := range stats {
		if stats[i].SubmissionCount > 0 {
			totals = append(totals, stats[i].TotalPointsReceived)
		}
	}
	if n := len(totals); n > 0 {
		sort.Ints(totals)
		env.hasMedian = true
		if n%2 == 1 {
			env.medianTwice = 2 * totals[n/2]
		} else {
			env.medianTwice = totals[n/2-1] + totals[n/2]
		}
	}
	return env
}

// Median returns the median season total over competitors who submitted.
func (e *Env) Median() (float64, bool) {
	return float64(e.medianTwice) / 2, e.hasMedian
}

// Award is the resolved outcome of one rule.
type Award struct {
	Key         string
	Category    string
	Subject     Subject
	Direction   Direction
	Competitors []string
	Pairs       []pairing.Pair
	Value       float64
	Applicable  bool
	Reason      string
}

// Winners returns the winning competitor IDs, or the pair strings.
func (a Award) Winners() []string {
	if a.Subject == SubjectCompetitor {
		return a.Competitors
	}
	out := make([]string, len(a.Pairs))
	for i, p := range a.Pairs {
		out[i] = p.String()
	}
	return out
}

// Resolve evaluates rules in order and returns one Award per rule.
func Resolve(rules []Rule, env *Env) []Award {
	awards := make([]Award, len(rules))
	for i := range rules {
		awards[i] = resolve(&rules[i], env)
	}
	return awards
}

func resolve(r *Rule, env *Env) Award {
	award := Award{Key: r.Key, Category: r.Category, Subject: r.Subject, Direction: r.Direction}

	var winners []Entry
	found := false
	for _, e := range candidates(r.Subject, env) {
		if r.Sample != nil && r.Sample(env, e) < r.MinSample {
			continue
		}
		value, ok := r.Metric(env, e)
		if !ok {
			continue
		}
		switch {
		case !found || better(r.Direction, value, award.Value):
			found, award.Value, winners = true, value, []Entry{e}
		case value == award.Value:
			winners = append(winners, e)
		}
	}

	if !found {
		award.Value = 0
		award.Reason = ErrInsufficientData.Error()
		return award
	}

	award.Applicable = true
	for _, w := range winners {
		if w.Stats != nil {
			award.Competitors = append(award.Competitors, w.Stats.CompetitorID)
		} else {
			award.Pairs = append(award.Pairs, w.Pair.Pair)
		}
	}
	sort.Strings(award.Competitors)
	sort.Slice(award.Pairs, func(i, j int) bool { return award.Pairs[i].Compare(award.Pairs[j]) < 0 })
	return award
}

func better(d Direction, value, best float64) bool {
	if d == Lowest {
		return value < best
	}
	return value > best
}

func candidates(s Subject, env *Env) []Entry {
	if s == SubjectPair {
		out := make([]Entry, len(env.Pairs))
		for i := range env.Pairs {
			out[i] = Entry{Pair: &env.Pairs[i]}
		}
		return out
	}
	out := make([]Entry, len(env.Stats))
	for i := range env.Stats {
		out[i] = Entry{Stats: &env.Stats[i]}
	}
	return out
}
