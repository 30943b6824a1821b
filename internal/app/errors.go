package service

import "errors"

var (
	// ErrNotReady is returned by read methods before the report is computed.
	ErrNotReady = errors.New("report not ready")
	// ErrNoLoader is returned by Start when no season loader is configured.
	ErrNoLoader = errors.New("no season loader configured")
)
