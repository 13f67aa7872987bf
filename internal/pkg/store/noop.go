package store

import (
	"context"

	"github.com/ymakhloufi/kiwi-rates/internal/pkg/model"
	"go.uber.org/zap"
)

// Noop logs the rates it is handed instead of writing them anywhere. It
// backs dry runs, so the whole pipeline can be exercised without a
// database.
type Noop struct {
	logger *zap.Logger
}

func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveRates(_ context.Context, rates []model.ReducedRate) (int, error) {
	for _, rate := range rates {
		n.logger.Info("dry run, would upsert rate",
			zap.String("bank", rate.Bank),
			zap.String("tenor", rate.Tenor.Name),
			zap.Int("months", rate.Tenor.Months),
			zap.String("rate_type", string(rate.RateType)),
			zap.Float64("rate", rate.Rate))
	}
	return len(rates), nil
}
