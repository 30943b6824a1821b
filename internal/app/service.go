// Package service wires ingestion, the report pipeline and popularity
// enrichment together and serves the results to the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/wrapped/internal/adapters/ingest"
	"github.com/okian/wrapped/internal/adapters/mq/worker"
	"github.com/okian/wrapped/internal/adapters/popularity"
	"github.com/okian/wrapped/internal/adapters/repository"
	"github.com/okian/wrapped/internal/domain/pairing"
	"github.com/okian/wrapped/internal/domain/report"
	"github.com/okian/wrapped/internal/domain/standings"
	"github.com/okian/wrapped/internal/domain/superlatives"
	"github.com/okian/wrapped/internal/domain/types"
	"github.com/okian/wrapped/pkg/logger"
	"github.com/okian/wrapped/pkg/metrics"
)

// Service computes the season report once on Start and serves read-only
// views of it.
type Service struct {
	mu sync.RWMutex

	// Components
	loader   ingest.Loader
	provider popularity.Provider

	// Configuration
	workerCount       int
	queueSize         int
	pairOpts          pairing.Options
	thresholds        superlatives.Thresholds
	awards            []string
	popularityTimeout time.Duration

	// State
	started   bool
	store     *repository.MemoryStore
	report    *report.Report
	annotated int

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:       runtime.NumCPU(),
		queueSize:         10_000,
		pairOpts:          pairing.DefaultOptions(),
		thresholds:        superlatives.Thresholds{MinSubmissions: 1, MinRoundsVoted: 1},
		popularityTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the season and computes the report. Popularity enrichment runs
// alongside the engine; its failure leaves popularity awards not applicable
// but does not fail Start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.loader == nil {
		return ErrNoLoader
	}
	log := s.logger.Named("service")
	log.Info(ctx, "starting wrapped service...")

	rules, err := superlatives.Lookup(s.awards, s.thresholds)
	if err != nil {
		return fmt.Errorf("select awards: %w", err)
	}

	rows, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load season: %w", err)
	}
	store, err := repository.NewMemoryStore(ctx, rows, repository.WithLogger(s.logger))
	if err != nil {
		return fmt.Errorf("validate season: %w", err)
	}

	pool := worker.NewPool(s.workerCount,
		worker.WithQueueSize(s.queueSize),
		worker.WithPoolLogger(s.logger),
	)
	builder := report.NewBuilder(
		report.WithRunner(pool),
		report.WithRules(rules),
		report.WithPairOptions(s.pairOpts),
		report.WithLogger(s.logger),
	)

	var (
		base   *report.Report
		tracks map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		base, err = builder.Aggregate(gctx, store)
		return err
	})
	if s.provider != nil {
		g.Go(func() error {
			tracks = s.annotate(gctx, store)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	s.store = store
	s.report = builder.Resolve(ctx, base, tracks)
	s.annotated = len(tracks)
	s.started = true
	metrics.UpdateWorkerCount(pool.Workers())
	log.Info(ctx, "wrapped service started",
		logger.String("run_id", s.report.RunID),
		logger.Int("workers", pool.Workers()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("annotatedTracks", s.annotated),
	)
	return nil
}

func (s *Service) annotate(ctx context.Context, store *repository.MemoryStore) map[string]int {
	ctx, cancel := context.WithTimeout(ctx, s.popularityTimeout)
	defer cancel()

	var ids []string
	for _, r := range store.Rounds(ctx) {
		for _, sub := range store.Submissions(ctx, r.ID) {
			ids = append(ids, sub.TrackID)
		}
	}
	tracks, err := popularity.Annotate(ctx, s.provider, ids, s.workerCount, s.logger.Named("popularity"))
	if err != nil {
		s.logger.Warn(ctx, "popularity enrichment skipped", logger.Error(err))
		return nil
	}
	return tracks
}

// Stop releases the computed report.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.store, s.report, s.annotated = nil, nil, 0
	s.started = false
	s.logger.Info(context.Background(), "wrapped service stopped")
}

func (s *Service) current() (*report.Report, *repository.MemoryStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotReady
	}
	return s.report, s.store, nil
}

// Report returns the computed report.
func (s *Service) Report(_ context.Context) (*report.Report, error) {
	rep, _, err := s.current()
	return rep, err
}

// Summary returns report and season counts.
func (s *Service) Summary(ctx context.Context) (types.Summary, error) {
	rep, store, err := s.current()
	if err != nil {
		return types.Summary{}, err
	}
	counts := store.Counts(ctx)
	out := types.Summary{
		RunID:         rep.RunID,
		GeneratedAt:   rep.GeneratedAt,
		Competitors:   counts.Competitors,
		Rounds:        counts.Rounds,
		Submissions:   counts.Submissions,
		Votes:         counts.Votes,
		Pairs:         len(rep.Pairs),
		ExcludedPairs: rep.ExcludedPairs,
		Awards:        len(rep.Awards),
		Workers:       s.workerCount,
	}
	for _, a := range rep.Awards {
		if a.Applicable {
			out.Applicable++
		}
	}
	s.mu.RLock()
	out.Annotated = s.annotated
	s.mu.RUnlock()
	return out, nil
}

// Awards returns every resolved award in presentation order.
func (s *Service) Awards(_ context.Context) ([]types.Award, error) {
	rep, _, err := s.current()
	if err != nil {
		return nil, err
	}
	return types.NewAwards(rep.Awards), nil
}

// Competitors returns the season statistics of every competitor, including
// those who neither submitted nor voted.
func (s *Service) Competitors(ctx context.Context) ([]types.Competitor, error) {
	rep, store, err := s.current()
	if err != nil {
		return nil, err
	}
	idx := standings.Index(rep.Stats)
	comps := store.Competitors(ctx)
	out := make([]types.Competitor, 0, len(comps))
	for _, c := range comps {
		st := standings.Stats{CompetitorID: c.ID}
		if p, ok := idx[c.ID]; ok {
			st = *p
		}
		out = append(out, types.NewCompetitor(st, c.Name, rep.Popularity[c.ID]))
	}
	return out, nil
}

// Competitor returns the wrapped summary for id.
func (s *Service) Competitor(ctx context.Context, id string) (types.Wrapped, error) {
	rep, store, err := s.current()
	if err != nil {
		return types.Wrapped{}, err
	}
	c, err := store.Competitor(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return types.Wrapped{}, fmt.Errorf("%q: %w", id, report.ErrUnknownCompetitor)
		}
		return types.Wrapped{}, err
	}
	w, err := rep.Wrapped(id)
	if errors.Is(err, report.ErrUnknownCompetitor) {
		// Registered but inactive all season.
		w, err = report.Wrapped{Stats: standings.Stats{CompetitorID: id}}, nil
	}
	if err != nil {
		return types.Wrapped{}, err
	}
	return types.NewWrapped(w, c.Name), nil
}

// Pairs returns every scored pair ordered by pair.
func (s *Service) Pairs(_ context.Context) ([]types.Pair, error) {
	rep, _, err := s.current()
	if err != nil {
		return nil, err
	}
	out := make([]types.Pair, len(rep.Pairs))
	for i, p := range rep.Pairs {
		out[i] = types.NewPair(p)
	}
	return out, nil
}

// Rounds returns each round's totals and winners in season order.
func (s *Service) Rounds(_ context.Context) ([]types.Round, error) {
	rep, _, err := s.current()
	if err != nil {
		return nil, err
	}
	out := make([]types.Round, len(rep.Rounds))
	for i, r := range rep.Rounds {
		out[i] = types.NewRound(r)
	}
	return out, nil
}
