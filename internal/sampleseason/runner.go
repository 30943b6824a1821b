// Package sampleseason generates reproducible league exports for local runs
// and checks a running service against them.
package sampleseason

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/wrapped/internal/adapters/ingest"
	"github.com/okian/wrapped/internal/adapters/repository"
	"github.com/okian/wrapped/pkg/logger"
)

// Run generates a season, writes it to cfg.OutputDir and reads it back
// through the ingest loader. When cfg.VerifyURL is set the running service
// is checked against the export.
func Run(ctx context.Context, cfg *Config) (repository.Counts, error) {
	start := time.Now()
	logger.Get().Info(ctx, "starting sample season",
		logger.String("outputDir", cfg.OutputDir),
		logger.String("verifyURL", cfg.VerifyURL))

	season, err := Generate(ctx, cfg)
	if err != nil {
		return repository.Counts{}, fmt.Errorf("season generation failed: %w", err)
	}
	if err := Write(ctx, cfg.OutputDir, season); err != nil {
		return repository.Counts{}, fmt.Errorf("export write failed: %w", err)
	}

	// Reading back through the same path the service uses catches any
	// export the service would reject.
	rows, err := ingest.NewCSVLoader(cfg.OutputDir).Load(ctx)
	if err != nil {
		return repository.Counts{}, fmt.Errorf("export reload failed: %w", err)
	}
	store, err := repository.NewMemoryStore(ctx, rows)
	if err != nil {
		return repository.Counts{}, fmt.Errorf("export rejected: %w", err)
	}
	counts := store.Counts(ctx)

	logger.Get().Info(ctx, "sample season written",
		logger.Int("competitors", counts.Competitors),
		logger.Int("rounds", counts.Rounds),
		logger.Int("submissions", counts.Submissions),
		logger.Int("votes", counts.Votes),
		logger.Duration("duration", time.Since(start)))

	if cfg.VerifyURL == "" {
		return counts, nil
	}
	client := &http.Client{Timeout: cfg.Timeout}
	if err := Verify(ctx, client, cfg.VerifyURL, counts); err != nil {
		return counts, fmt.Errorf("service verification failed: %w", err)
	}
	return counts, nil
}
