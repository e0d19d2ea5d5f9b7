package repository

import "github.com/user/reality-watch/internal/entity"

// ExtractorRepository turns raw page content into listing cards.
type ExtractorRepository interface {
	// Extract returns the listing cards in page order. An empty result is valid.
	Extract(content string) ([]entity.RawListing, error)
}
