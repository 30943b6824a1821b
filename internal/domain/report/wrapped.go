package report

import (
	"fmt"

	"github.com/okian/wrapped/internal/domain/pairing"
	"github.com/okian/wrapped/internal/domain/standings"
	"github.com/okian/wrapped/internal/domain/superlatives"
)

// Partner is the best-matching other competitor on one pair metric.
type Partner struct {
	CompetitorID string
	Score        pairing.Score
}

// Wrapped is one competitor's personal season summary.
type Wrapped struct {
	Stats          standings.Stats
	Popularity     superlatives.Popularity
	Awards         []superlatives.Award
	MostCompatible *Partner
	MostSimilar    *Partner
}

// Wrapped builds the summary for competitorID.
func (r *Report) Wrapped(competitorID string) (Wrapped, error) {
	var w Wrapped
	found := false
	for i := range r.Stats {
		if r.Stats[i].CompetitorID == competitorID {
			w.Stats, found = r.Stats[i], true
			break
		}
	}
	if !found {
		return Wrapped{}, fmt.Errorf("%q: %w", competitorID, ErrUnknownCompetitor)
	}
	w.Popularity = r.Popularity[competitorID]

	for _, a := range r.Awards {
		if a.Applicable && won(a, competitorID) {
			w.Awards = append(w.Awards, a)
		}
	}
	w.MostCompatible = r.bestPartner(competitorID, func(s pairing.Score) float64 { return s.Compatibility })
	w.MostSimilar = r.bestPartner(competitorID, func(s pairing.Score) float64 { return s.Similarity })
	return w, nil
}

func won(a superlatives.Award, id string) bool {
	for _, c := range a.Competitors {
		if c == id {
			return true
		}
	}
	for _, p := range a.Pairs {
		if p.Has(id) {
			return true
		}
	}
	return false
}

// bestPartner returns the pair partner with the highest metric, the smaller
// partner ID on ties. Nil when id has no scored pair.
func (r *Report) bestPartner(id string, metric func(pairing.Score) float64) *Partner {
	var best *Partner
	for _, s := range r.Pairs {
		if !s.Pair.Has(id) {
			continue
		}
		other := s.Pair.Other(id)
		if best == nil || metric(s) > metric(best.Score) ||
			(metric(s) == metric(best.Score) && other < best.CompetitorID) {
			best = &Partner{CompetitorID: other, Score: s}
		}
	}
	return best
}

// Award returns the award with key, if configured.
func (r *Report) Award(key string) (superlatives.Award, bool) {
	for _, a := range r.Awards {
		if a.Key == key {
			return a, true
		}
	}
	return superlatives.Award{}, false
}
