package sampleseason

import "io"

// ShowHelp prints usage information for the sample season tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Sample Season Tool
==================

Generates a reproducible music league export and optionally checks a
running wrapped service against it.

Usage:
  go run ./cmd/sample-season [options]

Options:
  -out string
        Directory for the export CSVs (default "data")
  -competitors int
        Number of competitors (default 8)
  -rounds int
        Number of rounds (default 10)
  -points int
        Points each voter hands out per round (default 10)
  -targets int
        Most submissions a voter splits points over (default 4)
  -participation float
        Chance a competitor enters a round (default 0.9)
  -comments float
        Chance a vote or submission carries a comment (default 0.3)
  -seed uint
        Random seed (default 1)
  -verify string
        Base URL of a running service to check, e.g. http://localhost:9080
  -timeout duration
        HTTP request timeout for verification (default 10s)
  -log-level string
        Log level (default "info")
  -help
        Show this help message

Examples:
  # Write the default league to ./data
  go run ./cmd/sample-season

  # A bigger league with a different seed
  go run ./cmd/sample-season -competitors 20 -rounds 16 -seed 7

  # Check a service started on the same export
  go run ./cmd/sample-season -verify http://localhost:9080
`)
}
