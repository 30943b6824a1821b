package popularity

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/okian/wrapped/pkg/logger"
)

// SpotifyOption configures a SpotifyProvider.
type SpotifyOption func(*SpotifyProvider)

// WithHTTPClient sets the client used for token and track requests.
func WithHTTPClient(c *http.Client) SpotifyOption {
	return func(p *SpotifyProvider) {
		if c != nil {
			p.client = c
		}
	}
}

// WithEndpoints overrides the token and API base URLs.
func WithEndpoints(tokenURL, apiURL string) SpotifyOption {
	return func(p *SpotifyProvider) {
		if tokenURL != "" {
			p.tokenURL = tokenURL
		}
		if apiURL != "" {
			p.apiURL = apiURL
		}
	}
}

// WithRateLimit sets the sustained request rate and burst for track lookups.
func WithRateLimit(limit rate.Limit, burst int) SpotifyOption {
	return func(p *SpotifyProvider) {
		if limit > 0 && burst > 0 {
			p.limiter = rate.NewLimiter(limit, burst)
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(l logger.Logger) SpotifyOption {
	return func(p *SpotifyProvider) {
		if l != nil {
			p.log = l
		}
	}
}
