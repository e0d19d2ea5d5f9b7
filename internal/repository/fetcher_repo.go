package repository

import "context"

// FetcherRepository retrieves raw page content.
type FetcherRepository interface {
	// Fetch returns the body of the page at url. Non-2xx responses and
	// network failures are reported as errors wrapping ErrFetch.
	Fetch(ctx context.Context, url string) (string, error)
}
