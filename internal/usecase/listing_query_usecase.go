package usecase

import (
	"context"
	"errors"

	"github.com/user/reality-watch/internal/entity"
	"github.com/user/reality-watch/internal/repository"
)

var (
	ErrInvalidLimit = errors.New("limit must be a positive integer")
)

// ListingQuery reads the persisted table for the listings API.
type ListingQuery interface {
	List(ctx context.Context, filter ListingFilter) ([]entity.Listing, error)
	Count(ctx context.Context) (int, error)
}

// ListingFilter narrows a List call. Zero values mean no filtering.
type ListingFilter struct {
	Region string
	Limit  int
}

type listingQueryUseCase struct {
	listingRepo repository.ListingRepository
}

// NewListingQuery creates a new ListingQuery use case.
func NewListingQuery(listingRepo repository.ListingRepository) ListingQuery {
	return &listingQueryUseCase{listingRepo: listingRepo}
}

func (uc *listingQueryUseCase) List(ctx context.Context, filter ListingFilter) ([]entity.Listing, error) {
	if filter.Limit < 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := uc.listingRepo.Load(ctx)
	if err != nil {
		return nil, wrapStorage("load listings table", err)
	}

	out := make([]entity.Listing, 0, len(rows))
	for _, l := range rows {
		if filter.Region != "" && l.Region != filter.Region {
			continue
		}
		out = append(out, l)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (uc *listingQueryUseCase) Count(ctx context.Context) (int, error) {
	rows, err := uc.listingRepo.Load(ctx)
	if err != nil {
		return 0, wrapStorage("load listings table", err)
	}
	return len(rows), nil
}
