package store

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/config"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/model"
	"go.uber.org/zap"
)

func TestBuildDSNOverTCP(t *testing.T) {
	dsn := BuildDSN(config.DB{User: "scraper", Pass: "hunter 2!", Name: "mortgage_data", Host: "localhost", Port: 5432})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	require.Equal(t, "postgres", u.Scheme)
	require.Equal(t, "localhost:5432", u.Host)
	require.Equal(t, "/mortgage_data", u.Path)
	require.Equal(t, "scraper", u.User.Username())
	pass, set := u.User.Password()
	require.True(t, set)
	require.Equal(t, "hunter 2!", pass)
}

func TestBuildDSNOverCloudSQLSocket(t *testing.T) {
	dsn := BuildDSN(config.DB{User: "scraper", Name: "mortgage_data", InstanceConnectionName: "proj:region:inst"})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	require.Empty(t, u.Host)
	require.Equal(t, "/cloudsql/proj:region:inst", u.Query().Get("host"))
}

func TestValidateDBConfig(t *testing.T) {
	require.ErrorIs(t, validateDBConfig(config.DB{Name: "mortgage_data"}), ErrMissingDBConfig)
	require.ErrorIs(t, validateDBConfig(config.DB{User: "scraper"}), ErrMissingDBConfig)
	require.NoError(t, validateDBConfig(config.DB{User: "scraper", Name: "mortgage_data"}))
}

func TestNoopCountsWithoutWriting(t *testing.T) {
	n := NewNoop(zap.NewNop())

	saved, err := n.SaveRates(context.Background(), []model.ReducedRate{
		{Bank: "ANZ", Tenor: model.CanonicalTenor{Name: "1 year", Months: 12}, RateType: model.RateTypeStandard, Rate: 6.49},
		{Bank: "ASB", Tenor: model.CanonicalTenor{Name: "Floating", Months: 1}, RateType: model.RateTypeSpecial, Rate: 7.99},
	})
	require.NoError(t, err)
	require.Equal(t, 2, saved)
}
