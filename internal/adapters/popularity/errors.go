package popularity

import "errors"

var (
	// ErrUnknownTrack is returned when a provider has no popularity for a track.
	ErrUnknownTrack = errors.New("unknown track")
	// ErrAuth is returned when the access token cannot be obtained.
	ErrAuth = errors.New("popularity auth failed")
	// ErrUnexpectedResponse is returned for non-2xx or malformed responses.
	ErrUnexpectedResponse = errors.New("unexpected popularity response")
)
