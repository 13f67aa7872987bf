package store

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/ymakhloufi/kiwi-rates/internal/pkg/config"
)

// ErrMissingDBConfig means the store cannot even build a connection string.
var ErrMissingDBConfig = errors.New("missing database configuration")

func validateDBConfig(cfg config.DB) error {
	if cfg.User == "" {
		return fmt.Errorf("%w: DB_USER is empty", ErrMissingDBConfig)
	}
	if cfg.Name == "" {
		return fmt.Errorf("%w: DB_NAME is empty", ErrMissingDBConfig)
	}
	return nil
}

// BuildDSN renders the pgx connection string. With an instance connection
// name set the database is reached over the Cloud SQL unix socket mounted
// under /cloudsql, otherwise over plain TCP.
func BuildDSN(cfg config.DB) string {
	userInfo := url.User(cfg.User)
	if cfg.Pass != "" {
		userInfo = url.UserPassword(cfg.User, cfg.Pass)
	}

	u := url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Path:   "/" + cfg.Name,
	}
	if cfg.InstanceConnectionName != "" {
		q := url.Values{}
		q.Set("host", "/cloudsql/"+cfg.InstanceConnectionName)
		u.RawQuery = q.Encode()
	} else {
		u.Host = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}
	return u.String()
}
