package scraper

import (
	"sort"

	"github.com/ymakhloufi/kiwi-rates/internal/pkg/mapping"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/model"
	"go.uber.org/zap"
)

type rateKey struct {
	bank     string
	tenor    string
	rateType model.RateType
}

// Reducer collapses raw observations down to the lowest rate per bank, tenor
// and rate type. Tenor labels resolve to canonical tenors here; observations
// with labels the table does not know are dropped with a warning.
type Reducer struct {
	resolver *mapping.Resolver
	logger   *zap.Logger
}

func NewReducer(resolver *mapping.Resolver, logger *zap.Logger) *Reducer {
	return &Reducer{resolver: resolver, logger: logger}
}

func (r *Reducer) Reduce(observations []model.RawObservation) []model.ReducedRate {
	best := make(map[rateKey]model.ReducedRate, len(observations))
	for _, obs := range observations {
		tenor, err := r.resolver.Resolve(obs.TenorLabel)
		if err != nil {
			r.logger.Warn("dropping observation with unknown tenor",
				zap.String("bank", obs.Bank),
				zap.String("label", obs.TenorLabel))
			continue
		}

		key := rateKey{bank: obs.Bank, tenor: tenor.Name, rateType: obs.RateType}
		// strictly-less keeps the first observation on ties
		if existing, ok := best[key]; !ok || obs.Rate < existing.Rate {
			best[key] = model.ReducedRate{
				Bank:     obs.Bank,
				Tenor:    tenor,
				RateType: obs.RateType,
				Rate:     obs.Rate,
			}
		}
	}

	out := make([]model.ReducedRate, 0, len(best))
	for _, rate := range best {
		out = append(out, rate)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bank != out[j].Bank {
			return out[i].Bank < out[j].Bank
		}
		if out[i].Tenor.Months != out[j].Tenor.Months {
			return out[i].Tenor.Months < out[j].Tenor.Months
		}
		return out[i].RateType < out[j].RateType
	})
	return out
}
