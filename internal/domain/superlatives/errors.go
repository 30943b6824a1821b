package superlatives

import "errors"

// Sentinel kinds for award resolution.
var (
	// ErrInsufficientData is the reason attached to an award no subject
	// qualifies for. It is never returned as a failure.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnknownRule is returned for an award key with no rule.
	ErrUnknownRule = errors.New("unknown award")
	// ErrDuplicateRule is returned when an award key is configured twice.
	ErrDuplicateRule = errors.New("duplicate award")
)
