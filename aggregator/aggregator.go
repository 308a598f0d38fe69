package aggregator

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/P1n3appl3/rssfetch/config"
	"github.com/P1n3appl3/rssfetch/fetcher"
	"github.com/P1n3appl3/rssfetch/post"
)

// Source fetches a single feed. *fetcher.Fetcher implements it.
type Source interface {
	Fetch(ctx context.Context, source config.Source) fetcher.Outcome
}

// Recorder receives every outcome of a run once all fetches are done
type Recorder interface {
	Record(ctx context.Context, outcomes []fetcher.Outcome) error
}

type Aggregator struct {
	fetcher  Source
	recorder Recorder
	logger   *slog.Logger
}

// New creates an aggregator. recorder may be nil.
func New(f Source, recorder Recorder, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		fetcher:  f,
		recorder: recorder,
		logger:   logger,
	}
}

// Collect starts one fetch per source before waiting on any of them and
// returns once every fetch has finished. Outcomes keep the order of sources.
func (a *Aggregator) Collect(ctx context.Context, sources []config.Source) []fetcher.Outcome {
	outcomes := make([]fetcher.Outcome, len(sources))

	var g errgroup.Group
	for i, source := range sources {
		i, source := i, source
		g.Go(func() error {
			outcomes[i] = a.fetcher.Fetch(ctx, source)
			return nil
		})
	}
	// Fetches absorb their own failures, Wait never returns an error
	_ = g.Wait()

	failed := lo.CountBy(outcomes, func(o fetcher.Outcome) bool { return o.Err != nil })
	a.logger.Info("fetched feeds", "amount", len(outcomes), "failed", failed)

	if a.recorder != nil {
		if err := a.recorder.Record(ctx, outcomes); err != nil {
			a.logger.Warn("failed to record fetch outcomes", "error", err)
		}
	}

	return outcomes
}

// Posts flattens outcomes source by source, keeping feed order within a source
func Posts(outcomes []fetcher.Outcome) []post.Post {
	return lo.Flatten(lo.Map(outcomes, func(o fetcher.Outcome, _ int) []post.Post {
		return o.Posts
	}))
}
