package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/user/reality-watch/internal/entity"
	"github.com/user/reality-watch/internal/repository"
)

// Runner performs one scrape run: collect, merge into the table, notify sinks.
type Runner interface {
	Run(ctx context.Context) (entity.RunSummary, error)
}

// RunOptions controls a single run.
type RunOptions struct {
	Regions []string
	DryRun  bool
}

type runUseCase struct {
	collector Collector
	store     DedupStore
	sinks     []repository.ListingSink
	opts      RunOptions
	logger    *zap.Logger
}

// NewRunner creates a new instance of the run use case. Sinks are optional.
func NewRunner(
	collector Collector,
	store DedupStore,
	sinks []repository.ListingSink,
	opts RunOptions,
	logger *zap.Logger,
) Runner {
	return &runUseCase{
		collector: collector,
		store:     store,
		sinks:     sinks,
		opts:      opts,
		logger:    logger,
	}
}

// Run returns an error only when the table could not be loaded or written.
func (uc *runUseCase) Run(ctx context.Context) (entity.RunSummary, error) {
	var summary entity.RunSummary

	uc.logger.Info("starting run", zap.Strings("regions", uc.opts.Regions), zap.Bool("dry_run", uc.opts.DryRun))

	listings := uc.collector.Collect(ctx, uc.opts.Regions)
	summary.Collected = len(listings)
	if len(listings) == 0 {
		uc.logger.Info("no new listings found")
		return summary, nil
	}

	if uc.opts.DryRun {
		for _, l := range listings {
			uc.logger.Info("collected listing",
				zap.Stringp("id", l.ID), zap.String("title", l.Title), zap.String("price", l.Price),
				zap.String("location", l.Region), zap.String("time", l.RawTime))
		}
		uc.logger.Info("dry run, table not updated", zap.Int("collected", summary.Collected))
		return summary, nil
	}

	total, added, err := uc.store.MergeAndPersist(ctx, listings)
	if err != nil {
		uc.logger.Error("failed to persist listings", zap.Error(err))
		return summary, err
	}
	summary.Added = len(added)
	summary.Total = total

	uc.logger.Info("listings saved",
		zap.Int("collected", summary.Collected), zap.Int("added", summary.Added), zap.Int("total", summary.Total))

	uc.publish(ctx, added)
	return summary, nil
}

func (uc *runUseCase) publish(ctx context.Context, added []entity.Listing) {
	if len(added) == 0 {
		return
	}
	for _, sink := range uc.sinks {
		if err := sink.Publish(ctx, added); err != nil {
			uc.logger.Warn("failed to publish new listings", zap.String("sink", sink.Name()), zap.Error(err))
			continue
		}
		uc.logger.Debug("new listings published", zap.String("sink", sink.Name()), zap.Int("count", len(added)))
	}
}
