package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/reality-watch/internal/repository"
)

// maxBodyBytes caps how much of a region page is read.
const maxBodyBytes = 8 << 20

// Fetcher retrieves pages over plain HTTP.
type Fetcher struct {
	client     *http.Client
	userAgents *UserAgents
	logger     *zap.Logger
}

// NewFetcher creates a fetcher whose requests are bounded by timeout.
func NewFetcher(timeout time.Duration, userAgents *UserAgents, logger *zap.Logger) repository.FetcherRepository {
	if userAgents == nil {
		userAgents = NewUserAgents()
	}
	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		userAgents: userAgents,
		logger:     logger,
	}
}

// Fetch returns the body of url. Any network failure or non-2xx status is
// reported as repository.ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", repository.ErrFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgents.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "cs-CZ,cs;q=0.9")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", repository.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: unexpected status %d for %s", repository.ErrFetch, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", repository.ErrFetch, err)
	}

	f.logger.Debug("page fetched",
		zap.String("url", url), zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)), zap.Duration("took", time.Since(start)))
	return string(body), nil
}
