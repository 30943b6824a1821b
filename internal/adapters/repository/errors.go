package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for season store errors.
var (
	// ErrMalformedReference marks a row pointing at a missing round,
	// competitor or submission.
	ErrMalformedReference = errors.New("malformed reference")
	// ErrInvalidRecord marks a row that is well referenced but not valid:
	// duplicates, negative or over-budget points, ambiguous sequences.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrNotFound is returned by lookups for unknown keys.
	ErrNotFound = errors.New("not found")
)

// Table names used in RecordError.
const (
	TableCompetitors = "competitors"
	TableRounds      = "rounds"
	TableSubmissions = "submissions"
	TableVotes       = "votes"
)

// RecordError locates a rejected row.
type RecordError struct {
	Table string
	Key   string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s[%s]: %v", e.Table, e.Key, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

func recordErr(table, key string, kind error, format string, args ...any) error {
	return &RecordError{Table: table, Key: key, Err: fmt.Errorf("%w: "+format, append([]any{kind}, args...)...)}
}
