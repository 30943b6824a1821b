package rounds

import "errors"

// Sentinel kinds for round aggregation errors.
var (
	ErrUnknownSubmission = errors.New("vote targets a submission outside the round")
)
