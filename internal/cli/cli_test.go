package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/config"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/store"
	"go.uber.org/zap"
)

func TestBuildPipelineWithEmbeddedTables(t *testing.T) {
	cfg := config.Config{Scrape: config.Scrape{
		URL:       "http://localhost/borrowing",
		Timeout:   time.Second,
		UserAgent: "kiwirates-test",
	}}

	svc, err := buildPipeline(cfg, store.NewNoop(zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestBuildPipelineRejectsMissingTableFile(t *testing.T) {
	cfg := config.Config{Scrape: config.Scrape{
		URL:           "http://localhost/borrowing",
		Timeout:       time.Second,
		UserAgent:     "kiwirates-test",
		BankTableFile: filepath.Join(t.TempDir(), "missing.yaml"),
	}}

	_, err := buildPipeline(cfg, store.NewNoop(zap.NewNop()), zap.NewNop())
	require.Error(t, err)
}
