package sampleseason

import "errors"

var (
	// ErrInvalidConfig is returned for out-of-range generator settings.
	ErrInvalidConfig = errors.New("invalid sample season config")
	// ErrVerification is returned when the running service disagrees with
	// the generated export.
	ErrVerification = errors.New("verification failed")
)
