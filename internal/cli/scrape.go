package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ymakhloufi/kiwi-rates/internal/app/scraper"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/config"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/store"
)

var dryRun bool

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one scrape cycle and exit",
	Long: `Scrape fetches the borrowing page once, reduces the observations and
upserts them. With --dry-run the reduced rates are logged instead of
written and no database is needed.`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log reduced rates instead of writing them")
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogMode)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st scraper.Store
	if dryRun {
		st = store.NewNoop(logger.Named("Noop Store"))
	} else {
		pg, err := store.Open(ctx, cfg.DB, logger.Named("PG Store"))
		if err != nil {
			return err
		}
		defer pg.Close()
		st = pg
	}

	svc, err := buildPipeline(cfg, st, logger)
	if err != nil {
		return err
	}

	result, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	fmt.Printf("observed %d rates, %d unique, %d updated (as of %s, took %s)\n",
		result.Observed, result.Unique, result.Updated, result.AsOf, result.Took)
	return nil
}
