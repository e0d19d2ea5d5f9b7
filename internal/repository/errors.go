package repository

import "errors"

var (
	// ErrFetch is returned when a page could not be retrieved.
	ErrFetch = errors.New("fetch failed")
	// ErrExtraction marks a listing card with missing or malformed fields.
	ErrExtraction = errors.New("extraction failed")
	// ErrStorage is returned when the listings table cannot be loaded or written.
	ErrStorage = errors.New("storage failed")
)
