package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/reality-watch/internal/entity"
	"github.com/user/reality-watch/internal/repository"
	"github.com/user/reality-watch/pkg/metrics"
	"github.com/user/reality-watch/pkg/utils"
)

// Collector gathers recently posted listings from the configured regions.
type Collector interface {
	// Collect visits regions in order and returns their recent listings in
	// region order, then page order. Failures are logged per region or card
	// and never abort the remaining work.
	Collect(ctx context.Context, regions []string) []entity.Listing
}

type collectorUseCase struct {
	baseURL   string
	fetcher   repository.FetcherRepository
	extractor repository.ExtractorRepository
	filter    RecencyFilter
	clock     func() time.Time
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewCollector creates a new instance of the collector use case. A nil clock
// defaults to time.Now.
func NewCollector(
	baseURL string,
	fetcher repository.FetcherRepository,
	extractor repository.ExtractorRepository,
	filter RecencyFilter,
	clock func() time.Time,
	m *metrics.Metrics,
	logger *zap.Logger,
) Collector {
	if clock == nil {
		clock = time.Now
	}
	return &collectorUseCase{
		baseURL:   baseURL,
		fetcher:   fetcher,
		extractor: extractor,
		filter:    filter,
		clock:     clock,
		metrics:   m,
		logger:    logger,
	}
}

func (uc *collectorUseCase) Collect(ctx context.Context, regions []string) []entity.Listing {
	now := uc.clock()

	var listings []entity.Listing
	for _, region := range regions {
		found := uc.collectRegion(ctx, region, now)
		uc.metrics.ListingsCollected.WithLabelValues(region).Add(float64(len(found)))
		listings = append(listings, found...)
	}
	return listings
}

func (uc *collectorUseCase) collectRegion(ctx context.Context, region string, now time.Time) []entity.Listing {
	pageURL, err := utils.RegionURL(uc.baseURL, region)
	if err != nil {
		uc.logger.Error("invalid region URL", zap.String("region", region), zap.Error(err))
		uc.metrics.FetchErrors.WithLabelValues(region).Inc()
		return nil
	}

	start := time.Now()
	content, err := uc.fetcher.Fetch(ctx, pageURL)
	uc.metrics.FetchDuration.WithLabelValues(region).Observe(time.Since(start).Seconds())
	if err != nil {
		uc.logger.Error("failed to fetch region page, skipping region",
			zap.String("region", region), zap.String("url", pageURL), zap.Error(err))
		uc.metrics.FetchErrors.WithLabelValues(region).Inc()
		return nil
	}

	cards, err := uc.extractor.Extract(content)
	if err != nil {
		uc.logger.Error("failed to parse region page, skipping region",
			zap.String("region", region), zap.String("url", pageURL), zap.Error(err))
		uc.metrics.FetchErrors.WithLabelValues(region).Inc()
		return nil
	}
	if len(cards) == 0 {
		uc.logger.Warn("no listing cards on region page", zap.String("region", region), zap.String("url", pageURL))
		uc.metrics.ListingsSkipped.WithLabelValues(metrics.SkipEmptyRegion).Inc()
		return nil
	}

	var listings []entity.Listing
	for i, card := range cards {
		card.Region = region
		if listing, ok := uc.processCard(card, i, now); ok {
			listings = append(listings, listing)
		}
	}

	uc.logger.Info("region collected",
		zap.String("region", region), zap.Int("cards", len(cards)), zap.Int("recent", len(listings)))
	return listings
}

// processCard applies the time parser and recency filter to one card and
// normalizes it. The bool is false when the card is skipped.
func (uc *collectorUseCase) processCard(card entity.RawListing, index int, now time.Time) (entity.Listing, bool) {
	if card.RawTime == nil {
		// Not a listing card (banners, separators).
		uc.metrics.ListingsSkipped.WithLabelValues(metrics.SkipNoTime).Inc()
		return entity.Listing{}, false
	}

	parsed, err := ParseListingTime(*card.RawTime, now)
	if err != nil {
		uc.logger.Warn("skipping listing with unparsable time",
			zap.String("region", card.Region), zap.Int("index", index), zap.Error(err))
		uc.metrics.ListingsSkipped.WithLabelValues(metrics.SkipBadTime).Inc()
		return entity.Listing{}, false
	}
	if !uc.filter.IsRecent(&parsed, now) {
		uc.metrics.ListingsSkipped.WithLabelValues(metrics.SkipStale).Inc()
		return entity.Listing{}, false
	}

	listing, err := NormalizeListing(card)
	if err != nil {
		uc.logger.Warn("skipping malformed listing card",
			zap.String("region", card.Region), zap.Int("index", index),
			zap.String("time", *card.RawTime), zap.Error(err))
		uc.metrics.ListingsSkipped.WithLabelValues(metrics.SkipExtraction).Inc()
		return entity.Listing{}, false
	}
	return listing, true
}

// NormalizeListing converts a card into a table row. Title, price and href
// must be present; the id is derived from the href and may be nil.
func NormalizeListing(card entity.RawListing) (entity.Listing, error) {
	var missing []string
	if card.Title == nil {
		missing = append(missing, "title")
	}
	if card.Price == nil {
		missing = append(missing, "price")
	}
	if card.Href == nil {
		missing = append(missing, "href")
	}
	if card.RawTime == nil {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return entity.Listing{}, fmt.Errorf("%w: missing %s", repository.ErrExtraction, strings.Join(missing, ", "))
	}

	return entity.Listing{
		ID:      utils.ListingIDFromHref(*card.Href),
		Title:   *card.Title,
		Price:   *card.Price,
		Region:  card.Region,
		RawTime: *card.RawTime,
	}, nil
}
