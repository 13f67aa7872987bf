package cli

import (
	"fmt"

	"github.com/ymakhloufi/kiwi-rates/internal/app/scraper"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/config"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/mapping"
	"go.uber.org/zap"
)

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildPipeline assembles fetcher, parser and reducer from configuration.
// The store is the caller's choice, it is the only part that differs
// between serving and a dry run.
func buildPipeline(cfg config.Config, store scraper.Store, logger *zap.Logger) (*scraper.Service, error) {
	normalizer, err := mapping.LoadNormalizer(cfg.Scrape.BankTableFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank table: %w", err)
	}
	resolver, err := mapping.LoadResolver(cfg.Scrape.TenorTableFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenor table: %w", err)
	}

	fetcher := scraper.NewFetcher(cfg.Scrape)
	extractor := scraper.NewExtractor(resolver.Columns(), logger.Named("Extractor"))
	parser := scraper.NewParser(scraper.RulesWithOverride(cfg.Scrape.TableXPath), normalizer, extractor, logger.Named("Parser"))
	reducer := scraper.NewReducer(resolver, logger.Named("Reducer"))

	return scraper.NewService(fetcher, parser, reducer, store, logger.Named("Scraper Svc")), nil
}
