package report

import "errors"

// Sentinel kinds for report errors.
var (
	ErrUnknownCompetitor = errors.New("competitor not in report")
)
