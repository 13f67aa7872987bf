package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ymakhloufi/kiwi-rates/internal/app/server"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/config"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/store"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scraper over HTTP",
	Long: `Serve starts the HTTP surface: GET / answers liveness probes and
POST /run-scraper triggers one synchronous scrape cycle against the
configured database. The process drains and exits on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
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

	pg, err := store.Open(ctx, cfg.DB, logger.Named("PG Store"))
	if err != nil {
		return err
	}
	defer pg.Close()

	svc, err := buildPipeline(cfg, pg, logger)
	if err != nil {
		return err
	}

	return server.New(cfg.Port, cfg.Scrape.Timeout, svc, logger.Named("HTTP Server")).Run(ctx)
}
