package popularity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/okian/wrapped/pkg/logger"
)

// Spotify Web API endpoints.
const (
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultAPIURL   = "https://api.spotify.com/v1"
)

// tokenSlack renews the token shortly before Spotify expires it.
const tokenSlack = 30 * time.Second

// SpotifyProvider reads track popularity from the Spotify Web API using the
// client credentials flow. Safe for concurrent use.
type SpotifyProvider struct {
	clientID     string
	clientSecret string
	tokenURL     string
	apiURL       string
	client       *http.Client
	limiter      *rate.Limiter
	log          logger.Logger
	now          func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

var _ Provider = (*SpotifyProvider)(nil)

// NewSpotifyProvider creates a provider. Defaults: 10 requests per second
// with a burst of 5 and a 10 second HTTP timeout.
func NewSpotifyProvider(clientID, clientSecret string, opts ...SpotifyOption) *SpotifyProvider {
	p := &SpotifyProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     DefaultTokenURL,
		apiURL:       DefaultAPIURL,
		client:       &http.Client{Timeout: 10 * time.Second},
		limiter:      rate.NewLimiter(10, 5),
		log:          logger.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TrackID extracts the Spotify track ID from a URI such as
// "spotify:track:4uLU6hMCjMI75M1A2tKUQC". Plain IDs are returned unchanged.
func TrackID(uri string) string {
	if i := strings.LastIndexByte(uri, ':'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// Popularity fetches the track and returns its popularity field.
func (p *SpotifyProvider) Popularity(ctx context.Context, trackID string) (int, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}
	token, err := p.accessToken(ctx)
	if err != nil {
		return 0, err
	}

	id := TrackID(trackID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/tracks/"+url.PathEscape(id), nil)
	if err != nil {
		return 0, fmt.Errorf("build track request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	body, status, err := p.do(req)
	if err != nil {
		return 0, err
	}
	switch {
	case status == http.StatusNotFound:
		return 0, fmt.Errorf("%w: %s", ErrUnknownTrack, trackID)
	case status == http.StatusUnauthorized:
		p.invalidate()
		return 0, fmt.Errorf("%w: token rejected", ErrAuth)
	case status/100 != 2:
		return 0, fmt.Errorf("%w: track %s: status %d", ErrUnexpectedResponse, id, status)
	}
	pop := gjson.GetBytes(body, "popularity")
	if !pop.Exists() {
		return 0, fmt.Errorf("%w: track %s: no popularity field", ErrUnexpectedResponse, id)
	}
	return int(pop.Int()), nil
}

func (p *SpotifyProvider) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" && p.now().Before(p.expires) {
		return p.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, status, err := p.do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuth, err)
	}
	if status/100 != 2 {
		return "", fmt.Errorf("%w: status %d", ErrAuth, status)
	}
	res := gjson.GetManyBytes(body, "access_token", "expires_in")
	if res[0].String() == "" {
		return "", fmt.Errorf("%w: no access token", ErrAuth)
	}
	ttl := time.Duration(res[1].Int()) * time.Second
	p.token = res[0].String()
	p.expires = p.now().Add(ttl - tokenSlack)
	p.log.Debug(ctx, "spotify token refreshed", logger.Duration("ttl", ttl))
	return p.token, nil
}

func (p *SpotifyProvider) invalidate() {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()
}

func (p *SpotifyProvider) do(req *http.Request) ([]byte, int, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.log.Warn(req.Context(), "close response body", logger.Error(cerr))
		}
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read %s: %w", req.URL.Path, err)
	}
	return body, resp.StatusCode, nil
}

func isUnknown(err error) bool { return errors.Is(err, ErrUnknownTrack) }
