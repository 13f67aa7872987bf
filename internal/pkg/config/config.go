// Package config reads the process environment exactly once at startup and
// hands the rest of the service an explicit struct. Nothing below main ever
// touches env vars directly.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// PolicyContinue skips a failed row and keeps writing; the run's updated
	// count reflects only successes.
	PolicyContinue UpsertPolicy = "continue"
	// PolicyAtomic wraps the whole batch in one transaction; the first failed
	// row rolls everything back.
	PolicyAtomic UpsertPolicy = "atomic"

	defaultScrapeURL = "https://www.interest.co.nz/borrowing"
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

var (
	ErrUnknownPolicy  = errors.New("unknown upsert policy")
	ErrUnknownLogMode = errors.New("unknown log mode")
)

type UpsertPolicy string

type Config struct {
	Port    int
	LogMode string // "production" or "development"
	Scrape  Scrape
	DB      DB
}

type Scrape struct {
	URL        string
	Timeout    time.Duration
	UserAgent  string
	TableXPath string // optional detection rule tried before the built-in ones

	BankTableFile  string // override the embedded bank lookup table
	TenorTableFile string // override the embedded tenor lookup table
}

type DB struct {
	User string
	Pass string
	Name string
	// Cloud SQL instance ("project:region:instance"); when set the store
	// connects through the /cloudsql unix socket instead of Host/Port.
	InstanceConnectionName string
	Host                   string
	Port                   int
	AutoMigrate            bool
	Policy                 UpsertPolicy
}

// Load builds the Config from the environment. A .env file is applied first
// when present (dev convenience). Missing DB credentials are not an error
// here; the store reports those when it is asked to connect.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", 8080)
	v.SetDefault("LOG_MODE", "production")
	v.SetDefault("SCRAPE_URL", defaultScrapeURL)
	v.SetDefault("SCRAPE_TIMEOUT", 30*time.Second)
	v.SetDefault("SCRAPE_USER_AGENT", defaultUserAgent)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("UPSERT_POLICY", string(PolicyContinue))

	policy, err := ParsePolicy(v.GetString("UPSERT_POLICY"))
	if err != nil {
		return Config{}, err
	}

	logMode := strings.ToLower(v.GetString("LOG_MODE"))
	if logMode != "production" && logMode != "development" {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownLogMode, logMode)
	}

	cfg := Config{
		Port:    v.GetInt("PORT"),
		LogMode: logMode,
		Scrape: Scrape{
			URL:            v.GetString("SCRAPE_URL"),
			Timeout:        v.GetDuration("SCRAPE_TIMEOUT"),
			UserAgent:      v.GetString("SCRAPE_USER_AGENT"),
			TableXPath:     v.GetString("SCRAPE_TABLE_XPATH"),
			BankTableFile:  v.GetString("BANK_TABLE_FILE"),
			TenorTableFile: v.GetString("TENOR_TABLE_FILE"),
		},
		DB: DB{
			User:                   v.GetString("DB_USER"),
			Pass:                   v.GetString("DB_PASS"),
			Name:                   v.GetString("DB_NAME"),
			InstanceConnectionName: v.GetString("INSTANCE_CONNECTION_NAME"),
			Host:                   v.GetString("DB_HOST"),
			Port:                   v.GetInt("DB_PORT"),
			AutoMigrate:            v.GetBool("DB_AUTO_MIGRATE"),
			Policy:                 policy,
		},
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.Scrape.Timeout <= 0 {
		return Config{}, fmt.Errorf("invalid SCRAPE_TIMEOUT %s", cfg.Scrape.Timeout)
	}

	return cfg, nil
}

// ParsePolicy maps the UPSERT_POLICY value to a known policy,
// case-insensitively.
func ParsePolicy(raw string) (UpsertPolicy, error) {
	switch UpsertPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case PolicyContinue:
		return PolicyContinue, nil
	case PolicyAtomic:
		return PolicyAtomic, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, raw)
	}
}
