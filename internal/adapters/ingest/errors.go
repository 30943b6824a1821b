package ingest

import "errors"

var (
	// ErrMissingColumn is returned when an export file lacks a required header.
	ErrMissingColumn = errors.New("missing column")
	// ErrInvalidRow is returned for rows with unparsable fields.
	ErrInvalidRow = errors.New("invalid row")
)
