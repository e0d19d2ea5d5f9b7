package chromedp_crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/reality-watch/internal/repository"
)

const defaultUserAgent = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36`

// BrowserFetcher renders pages in headless Chrome and returns the final DOM.
type BrowserFetcher struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	timeout     time.Duration
	logger      *zap.Logger
}

// NewBrowserFetcher starts an exec allocator shared by all fetches. Close
// releases it.
func NewBrowserFetcher(pageLoadTimeout time.Duration, userAgent string, logger *zap.Logger) *BrowserFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserFetcher{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		timeout:     pageLoadTimeout,
		logger:      logger,
	}
}

var _ repository.FetcherRepository = (*BrowserFetcher)(nil)

// Fetch navigates to url, waits for the body and returns the outer HTML.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	taskCtx, cancel := chromedp.NewContext(b.allocCtx, chromedp.WithLogf(b.logger.Sugar().Debugf))
	defer cancel()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, b.timeout)
	defer cancelTimeout()

	// Abort the browser task when the caller gives up.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()
	resp, err := chromedp.RunResponse(taskCtx, chromedp.Navigate(url))
	if err != nil {
		return "", fmt.Errorf("%w: navigate %s: %w", repository.ErrFetch, url, err)
	}
	if err := checkResponse(url, resp); err != nil {
		return "", err
	}

	var html string
	err = chromedp.Run(taskCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("%w: render %s: %w", repository.ErrFetch, url, err)
	}

	b.logger.Debug("page rendered", zap.String("url", url), zap.Int("bytes", len(html)),
		zap.Duration("took", time.Since(start)))
	return html, nil
}

// checkResponse rejects a missing or non-2xx main document response.
func checkResponse(url string, resp *network.Response) error {
	if resp == nil {
		return fmt.Errorf("%w: no response for %s", repository.ErrFetch, url)
	}
	if resp.Status < 200 || resp.Status > 299 {
		return fmt.Errorf("%w: unexpected status %d for %s", repository.ErrFetch, resp.Status, url)
	}
	return nil
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() {
	b.cancelAlloc()
}
