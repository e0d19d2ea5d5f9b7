package repository

import (
	"context"

	"github.com/user/reality-watch/internal/entity"
)

// ListingRepository is the durable listings table.
type ListingRepository interface {
	// Load returns all stored rows in table order. A missing table yields no rows.
	Load(ctx context.Context) ([]entity.Listing, error)
	// Replace rewrites the whole table with rows.
	Replace(ctx context.Context, rows []entity.Listing) error
	// Lock takes exclusive ownership of the table and returns the release func.
	Lock(ctx context.Context) (func(), error)
}

// ListingSink receives the listings newly added to the table by a run.
type ListingSink interface {
	Name() string
	Publish(ctx context.Context, listings []entity.Listing) error
}
