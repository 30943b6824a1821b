// Package report runs the season pipeline: rounds, standings, pairs, then
// awards. A Report is never modified after it is returned.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/wrapped/internal/domain/model"
	"github.com/okian/wrapped/internal/domain/pairing"
	"github.com/okian/wrapped/internal/domain/rounds"
	"github.com/okian/wrapped/internal/domain/standings"
	"github.com/okian/wrapped/internal/domain/superlatives"
	"github.com/okian/wrapped/pkg/logger"
	"github.com/okian/wrapped/pkg/metrics"
)

// Pipeline stage names used in logs and metrics.
const (
	StageRounds    = "rounds"
	StageStandings = "standings"
	StagePairs     = "pairs"
	StageAwards    = "awards"
)

// Report is the engine output.
type Report struct {
	RunID         string
	GeneratedAt   time.Time
	Rounds        []rounds.Result
	Stats         []standings.Stats
	Pairs         []pairing.Score
	ExcludedPairs int
	// Popularity is keyed by competitor. Empty when enrichment was off.
	Popularity map[string]superlatives.Popularity
	Awards     []superlatives.Award
}

// Builder runs the pipeline.
type Builder struct {
	runner   model.Runner
	rules    []superlatives.Rule
	pairOpts pairing.Options
	log      logger.Logger
	now      func() time.Time
}

// NewBuilder creates a Builder. Defaults: sequential runner, every default
// award, default pair options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		runner:   model.Sequential,
		rules:    superlatives.DefaultRules(superlatives.Thresholds{}),
		pairOpts: pairing.DefaultOptions(),
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build aggregates src and resolves awards in one call.
func (b *Builder) Build(ctx context.Context, src rounds.Source, trackPopularity map[string]int) (*Report, error) {
	rep, err := b.Aggregate(ctx, src)
	if err != nil {
		return nil, err
	}
	return b.Resolve(ctx, rep, trackPopularity), nil
}

// Aggregate runs every stage except award resolution.
func (b *Builder) Aggregate(ctx context.Context, src rounds.Source) (*Report, error) {
	rep := &Report{RunID: uuid.NewString(), GeneratedAt: b.now().UTC()}
	log := b.log.Named("report")
	log.Info(ctx, "pipeline started", logger.String("run_id", rep.RunID))

	err := b.stage(ctx, StageRounds, func() (int, error) {
		res, err := rounds.AggregateAll(ctx, src, b.runner)
		rep.Rounds = res
		return len(res), err
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordRoundsAggregated(len(rep.Rounds))

	b.timed(ctx, StageStandings, func() int {
		rep.Stats = standings.Aggregate(rep.Rounds)
		return len(rep.Stats)
	})

	err = b.stage(ctx, StagePairs, func() (int, error) {
		out, err := pairing.Build(ctx, rep.Rounds, b.pairOpts, b.runner)
		rep.Pairs, rep.ExcludedPairs = out.Scores, out.Excluded
		return len(out.Scores), err
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordPairsScored(len(rep.Pairs))
	metrics.RecordPairsExcluded(rep.ExcludedPairs)
	return rep, nil
}

// Resolve returns a copy of rep with popularity and awards filled in.
// trackPopularity maps track ID to a 0-100 popularity and may be nil.
func (b *Builder) Resolve(ctx context.Context, rep *Report, trackPopularity map[string]int) *Report {
	out := *rep
	out.Popularity = competitorPopularity(rep.Rounds, trackPopularity)

	b.timed(ctx, StageAwards, func() int {
		env := superlatives.NewEnv(out.Stats, out.Pairs, out.Popularity)
		out.Awards = superlatives.Resolve(b.rules, env)
		return len(out.Awards)
	})

	log := b.log.Named("report")
	for _, a := range out.Awards {
		if a.Applicable {
			metrics.RecordAwardResolved(a.Category)
			continue
		}
		metrics.RecordAwardNotApplicable(a.Category)
		log.Warn(ctx, "award not applicable",
			logger.String("award", a.Key),
			logger.String("reason", a.Reason))
	}
	log.Info(ctx, "pipeline finished",
		logger.String("run_id", out.RunID),
		logger.Int("awards", len(out.Awards)))
	return &out
}

func (b *Builder) stage(ctx context.Context, name string, run func() (int, error)) error {
	start := time.Now()
	n, err := run()
	elapsed := time.Since(start)
	metrics.ObserveStageDuration(name, float64(elapsed.Microseconds())/1000)
	if err != nil {
		metrics.RecordStageFailure(name)
		b.log.Error(ctx, "stage failed", logger.String("stage", name), logger.Error(err))
		return fmt.Errorf("%s stage: %w", name, err)
	}
	b.finished(ctx, name, n, elapsed)
	return nil
}

// timed runs a stage that cannot fail.
func (b *Builder) timed(ctx context.Context, name string, run func() int) {
	start := time.Now()
	n := run()
	elapsed := time.Since(start)
	metrics.ObserveStageDuration(name, float64(elapsed.Microseconds())/1000)
	b.finished(ctx, name, n, elapsed)
}

func (b *Builder) finished(ctx context.Context, name string, n int, elapsed time.Duration) {
	b.log.Debug(ctx, "stage finished",
		logger.String("stage", name),
		logger.Int("count", n),
		logger.Duration("elapsed", elapsed))
}

func competitorPopularity(results []rounds.Result, tracks map[string]int) map[string]superlatives.Popularity {
	out := map[string]superlatives.Popularity{}
	if len(tracks) == 0 {
		return out
	}
	for i := range results {
		for _, t := range results[i].Submissions {
			pop, ok := tracks[t.Submission.TrackID]
			if !ok {
				continue
			}
			p := out[t.Submission.SubmitterID]
			p.Total += pop
			p.Tracks++
			out[t.Submission.SubmitterID] = p
		}
	}
	return out
}
