package sampleseason

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/okian/wrapped/internal/adapters/repository"
	"github.com/okian/wrapped/pkg/logger"
)

// Verify checks that the service at baseURL reports the same season size
// as counts.
func Verify(ctx context.Context, client *http.Client, baseURL string, counts repository.Counts) error {
	url := strings.TrimRight(baseURL, "/") + "/stats"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: stats returned status %d", ErrVerification, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("%w: stats body is not JSON", ErrVerification)
	}

	want := []struct {
		path string
		n    int
	}{
		{"competitors", counts.Competitors},
		{"rounds", counts.Rounds},
		{"submissions", counts.Submissions},
		{"votes", counts.Votes},
	}
	var mismatches []string
	for _, w := range want {
		got := gjson.GetBytes(body, w.path)
		if !got.Exists() || int(got.Int()) != w.n {
			mismatches = append(mismatches, fmt.Sprintf("%s: want %d, got %s", w.path, w.n, got.Raw))
		}
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%w: %s", ErrVerification, strings.Join(mismatches, "; "))
	}

	logger.Get().Info(ctx, "service agrees with export",
		logger.String("runID", gjson.GetBytes(body, "run_id").String()),
		logger.Int("applicableAwards", int(gjson.GetBytes(body, "applicable_awards").Int())))
	return nil
}
