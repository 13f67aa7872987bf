// Package scraper implements the fetch, parse, reduce and store pipeline
// for the interest.co.nz borrowing page. One Run is one synchronous pass
// over the page; nothing is cached between runs.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrNoObservations means fetch and parse succeeded but produced nothing.
// That is almost always page drift, so the run fails loudly instead of
// reporting an empty success.
var ErrNoObservations = errors.New("no rate observations scraped")

// Store persists one reduced batch and reports how many rows it accepted.
type Store interface {
	SaveRates(ctx context.Context, rates []model.ReducedRate) (int, error)
}

// PageFetcher hands back the parsed borrowing page.
type PageFetcher interface {
	Fetch(ctx context.Context) (*html.Node, error)
}

type Service struct {
	fetcher PageFetcher
	parser  *Parser
	reducer *Reducer
	store   Store
	logger  *zap.Logger
}

func NewService(fetcher PageFetcher, parser *Parser, reducer *Reducer, store Store, logger *zap.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		parser:  parser,
		reducer: reducer,
		store:   store,
		logger:  logger,
	}
}

// Run executes one scrape cycle and reports what it saw and saved. The
// returned Result is meaningful even on error, it carries whatever stages
// completed.
func (s *Service) Run(ctx context.Context) (model.Result, error) {
	started := time.Now()
	result := model.Result{AsOf: civil.DateOf(started)}

	doc, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch failed: %w", err)
	}

	observations, err := s.parser.Parse(doc)
	if err != nil {
		return result, fmt.Errorf("parse failed: %w", err)
	}
	if len(observations) == 0 {
		return result, ErrNoObservations
	}
	result.Observed = len(observations)
	s.logger.Info("scraped rate observations", zap.Int("count", len(observations)))

	rates := s.reducer.Reduce(observations)
	if len(rates) == 0 {
		return result, fmt.Errorf("%w: all %d observations dropped in reduction", ErrNoObservations, len(observations))
	}
	result.Unique = len(rates)
	s.logger.Info("reduced to unique rate combinations", zap.Int("count", len(rates)))

	updated, err := s.store.SaveRates(ctx, rates)
	result.Updated = updated
	result.Took = time.Since(started)
	if err != nil {
		return result, fmt.Errorf("store failed: %w", err)
	}

	s.logger.Info("scrape run finished",
		zap.Int("observed", result.Observed),
		zap.Int("unique", result.Unique),
		zap.Int("updated", result.Updated),
		zap.Duration("took", result.Took))
	return result, nil
}
