package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/wrapped/internal/sampleseason"
	"github.com/okian/wrapped/pkg/logger"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	def := sampleseason.DefaultConfig()
	var (
		out           = flag.String("out", def.OutputDir, "Directory for the export CSVs")
		competitors   = flag.Int("competitors", def.Competitors, "Number of competitors")
		rounds        = flag.Int("rounds", def.Rounds, "Number of rounds")
		points        = flag.Int("points", def.PointsPerVoter, "Points each voter hands out per round")
		targets       = flag.Int("targets", def.MaxTargets, "Most submissions a voter splits points over")
		participation = flag.Float64("participation", def.Participation, "Chance a competitor enters a round")
		comments      = flag.Float64("comments", def.CommentRate, "Chance a vote or submission carries a comment")
		seed          = flag.Uint64("seed", def.Seed, "Random seed")
		verify        = flag.String("verify", "", "Base URL of a running service to check")
		timeout       = flag.Duration("timeout", def.Timeout, "HTTP request timeout for verification")
		logLevel      = flag.String("log-level", "info", "Log level")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sampleseason.ShowHelp(os.Stdout)
		return
	}

	if err := logger.InitWithWriter(os.Stderr, "text"); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(*logLevel); err != nil {
		os.Stderr.WriteString("Invalid log level: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := def
	cfg.OutputDir = *out
	cfg.Competitors = *competitors
	cfg.Rounds = *rounds
	cfg.PointsPerVoter = *points
	cfg.MaxTargets = *targets
	cfg.Participation = *participation
	cfg.CommentRate = *comments
	cfg.Seed = *seed
	cfg.VerifyURL = *verify
	cfg.Timeout = *timeout

	if _, err := sampleseason.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "sample season failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
