package sampleseason

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/wrapped/internal/domain/model"
	"github.com/okian/wrapped/pkg/logger"
)

const base62 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Spotify track IDs are 22 base62 characters.
const trackIDLength = 22

var comments = []string{
	"instant classic",
	"tough call",
	"this one grew on me",
	"not my thing but well played",
	"had this on repeat all week",
	"perfect for the theme",
	"a bold choice",
	"brought back memories",
}

var names = []string{
	"Ada", "Bea", "Cal", "Dev", "Eli", "Fay", "Gus", "Hal",
	"Ivy", "Jo", "Kai", "Lou", "Max", "Nia", "Oz", "Pia",
}

// Timed pairs a row with its export Created timestamp.
type Timed[T any] struct {
	Row     T
	Created time.Time
}

// Season is a generated league export.
type Season struct {
	Competitors []model.Competitor
	Rounds      []Timed[model.Round]
	Submissions []Timed[model.Submission]
	Votes       []Timed[model.Vote]
}

// Generate builds a season from cfg. Equal configs give equal seasons.
func Generate(ctx context.Context, cfg *Config) (*Season, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	src := rand.NewChaCha8(seed)
	g := &generator{cfg: cfg, rng: rand.New(src)}

	logger.Get().Info(ctx, "generating season",
		logger.Int("competitors", cfg.Competitors),
		logger.Int("rounds", cfg.Rounds),
		logger.Any("seed", cfg.Seed))

	s := &Season{}
	for i := 0; i < cfg.Competitors; i++ {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return nil, fmt.Errorf("competitor id: %w", err)
		}
		s.Competitors = append(s.Competitors, model.Competitor{ID: id.String(), Name: g.name(i)})
	}

	for r := 0; r < cfg.Rounds; r++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		roundID, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return nil, fmt.Errorf("round id: %w", err)
		}
		created := cfg.Start.Add(time.Duration(r) * cfg.RoundInterval)
		round := model.Round{ID: roundID.String(), Position: r + 1, Name: "Round " + strconv.Itoa(r+1)}
		s.Rounds = append(s.Rounds, Timed[model.Round]{Row: round, Created: created})
		g.round(s, round, created)
	}

	logger.Get().Info(ctx, "generated season",
		logger.Int("submissions", len(s.Submissions)),
		logger.Int("votes", len(s.Votes)))
	return s, nil
}

type generator struct {
	cfg *Config
	rng *rand.Rand
}

func (g *generator) name(i int) string {
	n := names[i%len(names)]
	if i >= len(names) {
		n += " " + strconv.Itoa(i/len(names)+1)
	}
	return n
}

func (g *generator) trackURI() string {
	b := make([]byte, trackIDLength)
	for i := range b {
		b[i] = base62[g.rng.IntN(len(base62))]
	}
	return "spotify:track:" + string(b)
}

func (g *generator) comment() string {
	if g.rng.Float64() >= g.cfg.CommentRate {
		return ""
	}
	return comments[g.rng.IntN(len(comments))]
}

// round adds submissions from participating competitors, then votes from
// every participant on the others' submissions.
func (g *generator) round(s *Season, round model.Round, created time.Time) {
	var entries []model.Submission
	for _, c := range s.Competitors {
		if g.rng.Float64() >= g.cfg.Participation {
			continue
		}
		sub := model.Submission{
			RoundID:     round.ID,
			SubmitterID: c.ID,
			TrackID:     g.trackURI(),
			Title:       "Track " + strconv.Itoa(len(s.Submissions)+1),
			Artist:      "Artist " + strconv.Itoa(g.rng.IntN(50)+1),
			Comment:     g.comment(),
		}
		entries = append(entries, sub)
		at := created.Add(time.Duration(g.rng.IntN(72*60)) * time.Minute)
		s.Submissions = append(s.Submissions, Timed[model.Submission]{Row: sub, Created: at})
	}

	votingOpens := created.Add(3 * 24 * time.Hour)
	for _, voter := range entries {
		var targets []model.Submission
		for _, e := range entries {
			if e.SubmitterID != voter.SubmitterID {
				targets = append(targets, e)
			}
		}
		if len(targets) == 0 {
			continue
		}
		g.rng.Shuffle(len(targets), func(i, j int) { targets[i], targets[j] = targets[j], targets[i] })
		targets = targets[:min(len(targets), g.cfg.MaxTargets, g.cfg.PointsPerVoter)]

		at := votingOpens.Add(time.Duration(g.rng.IntN(72*60)) * time.Minute)
		for i, points := range g.split(len(targets)) {
			s.Votes = append(s.Votes, Timed[model.Vote]{
				Row: model.Vote{
					RoundID: round.ID,
					TrackID: targets[i].TrackID,
					VoterID: voter.SubmitterID,
					Points:  points,
					Comment: g.comment(),
				},
				Created: at.Add(time.Duration(i) * time.Second),
			})
		}
	}
}

// split hands out PointsPerVoter points over n targets, at least one each.
func (g *generator) split(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 1
	}
	for left := g.cfg.PointsPerVoter - n; left > 0; left-- {
		out[g.rng.IntN(n)]++
	}
	return out
}
