// Package popularity annotates tracks with a 0-100 popularity score. It
// only annotates: computed totals never depend on it.
package popularity

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/okian/wrapped/pkg/logger"
	"github.com/okian/wrapped/pkg/metrics"
)

// Lookup statuses recorded in metrics.
const (
	StatusHit     = "hit"
	StatusMissing = "missing"
	StatusError   = "error"
)

// Provider looks up the popularity of one track.
type Provider interface {
	Popularity(ctx context.Context, trackID string) (int, error)
}

// StaticProvider serves popularity from a fixed table.
type StaticProvider map[string]int

// Popularity returns the table entry or ErrUnknownTrack.
func (s StaticProvider) Popularity(ctx context.Context, trackID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p, ok := s[trackID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTrack, trackID)
	}
	return p, nil
}

// Annotate looks up every distinct track with at most concurrency requests
// in flight. Failed lookups are logged and left out of the result; only
// cancellation of ctx fails the call.
func Annotate(ctx context.Context, p Provider, trackIDs []string, concurrency int, log logger.Logger) (map[string]int, error) {
	if log == nil {
		log = logger.Nop()
	}
	ids := slices.Clone(trackIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var (
		mu  sync.Mutex
		out = make(map[string]int, len(ids))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for _, id := range ids {
		g.Go(func() error {
			pop, err := p.Popularity(gctx, id)
			if err != nil {
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				status := StatusError
				if isUnknown(err) {
					status = StatusMissing
				}
				metrics.RecordPopularityLookup(status)
				log.Warn(gctx, "popularity lookup failed", logger.String("track", id), logger.Error(err))
				return nil
			}
			metrics.RecordPopularityLookup(StatusHit)
			mu.Lock()
			out[id] = pop
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("annotate popularity: %w", err)
	}
	log.Info(ctx, "popularity annotated",
		logger.Int("tracks", len(ids)),
		logger.Int("annotated", len(out)))
	return out, nil
}
