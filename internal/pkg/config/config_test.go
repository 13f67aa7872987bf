package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "production", cfg.LogMode)
	require.Equal(t, "https://www.interest.co.nz/borrowing", cfg.Scrape.URL)
	require.Equal(t, 30*time.Second, cfg.Scrape.Timeout)
	require.NotEmpty(t, cfg.Scrape.UserAgent)
	require.Equal(t, "localhost", cfg.DB.Host)
	require.Equal(t, 5432, cfg.DB.Port)
	require.Equal(t, PolicyContinue, cfg.DB.Policy)
	require.False(t, cfg.DB.AutoMigrate)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_MODE", "development")
	t.Setenv("SCRAPE_URL", "http://localhost:1234/borrowing")
	t.Setenv("SCRAPE_TIMEOUT", "5s")
	t.Setenv("DB_USER", "scraper")
	t.Setenv("DB_NAME", "mortgage_data")
	t.Setenv("INSTANCE_CONNECTION_NAME", "proj:region:instance")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("UPSERT_POLICY", "Atomic")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "development", cfg.LogMode)
	require.Equal(t, "http://localhost:1234/borrowing", cfg.Scrape.URL)
	require.Equal(t, 5*time.Second, cfg.Scrape.Timeout)
	require.Equal(t, "scraper", cfg.DB.User)
	require.Equal(t, "mortgage_data", cfg.DB.Name)
	require.Equal(t, "proj:region:instance", cfg.DB.InstanceConnectionName)
	require.True(t, cfg.DB.AutoMigrate)
	require.Equal(t, PolicyAtomic, cfg.DB.Policy)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("UPSERT_POLICY", "sometimes")
	_, err := Load()
	require.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestLoadRejectsBadLogMode(t *testing.T) {
	t.Setenv("LOG_MODE", "chatty")
	_, err := Load()
	require.ErrorIs(t, err, ErrUnknownLogMode)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("  CONTINUE ")
	require.NoError(t, err)
	require.Equal(t, PolicyContinue, p)

	p, err = ParsePolicy("atomic")
	require.NoError(t, err)
	require.Equal(t, PolicyAtomic, p)

	_, err = ParsePolicy("")
	require.ErrorIs(t, err, ErrUnknownPolicy)
}
