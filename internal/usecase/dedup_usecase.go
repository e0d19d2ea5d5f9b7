package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/reality-watch/internal/entity"
	"github.com/user/reality-watch/internal/repository"
	"github.com/user/reality-watch/pkg/metrics"
)

// DedupStore merges new listings into the persisted table without storing
// the same listing id twice.
type DedupStore interface {
	// MergeAndPersist returns the table size after the merge together with
	// the incoming rows that were actually added.
	MergeAndPersist(ctx context.Context, incoming []entity.Listing) (int, []entity.Listing, error)
}

type dedupUseCase struct {
	listingRepo repository.ListingRepository
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewDedupStore creates a new instance of the dedup store use case.
func NewDedupStore(listingRepo repository.ListingRepository, m *metrics.Metrics, logger *zap.Logger) DedupStore {
	return &dedupUseCase{
		listingRepo: listingRepo,
		metrics:     m,
		logger:      logger,
	}
}

func (uc *dedupUseCase) MergeAndPersist(ctx context.Context, incoming []entity.Listing) (int, []entity.Listing, error) {
	unlock, err := uc.listingRepo.Lock(ctx)
	if err != nil {
		return 0, nil, wrapStorage("lock listings table", err)
	}
	defer unlock()

	existing, err := uc.listingRepo.Load(ctx)
	if err != nil {
		return 0, nil, wrapStorage("load listings table", err)
	}

	merged, added := MergeListings(existing, incoming)
	if len(added) == 0 && len(existing) == len(merged) {
		// Nothing new; leave the file untouched.
		uc.metrics.TableRows.Set(float64(len(merged)))
		return len(merged), nil, nil
	}

	if err := uc.listingRepo.Replace(ctx, merged); err != nil {
		return 0, nil, wrapStorage("persist listings table", err)
	}
	uc.metrics.TableRows.Set(float64(len(merged)))

	uc.logger.Debug("listings table merged",
		zap.Int("existing", len(existing)), zap.Int("incoming", len(incoming)),
		zap.Int("added", len(added)), zap.Int("total", len(merged)))
	return len(merged), added, nil
}

// MergeListings appends incoming to existing and keeps only the first
// occurrence of every non-nil id. Rows without an id are never collapsed.
// added holds the incoming rows that made it into merged.
func MergeListings(existing, incoming []entity.Listing) (merged, added []entity.Listing) {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged = make([]entity.Listing, 0, len(existing)+len(incoming))

	keep := func(l entity.Listing) bool {
		if !l.HasID() {
			return true
		}
		if _, dup := seen[*l.ID]; dup {
			return false
		}
		seen[*l.ID] = struct{}{}
		return true
	}

	for _, l := range existing {
		if keep(l) {
			merged = append(merged, l)
		}
	}
	for _, l := range incoming {
		if keep(l) {
			merged = append(merged, l)
			added = append(added, l)
		}
	}
	return merged, added
}

func wrapStorage(op string, err error) error {
	if errors.Is(err, repository.ErrStorage) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, repository.ErrStorage, err)
}
