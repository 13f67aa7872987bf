package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ymakhloufi/kiwi-rates/internal/pkg/model"
	"go.uber.org/zap"
)

var (
	rateRe         = regexp.MustCompile(`\d+\.\d+`)
	combinedCellRe = regexp.MustCompile(`18 months\s*=\s*(\d+\.\d+)`)
)

const embeddedTenorLabel = "18 months"

// Extractor turns one table row's cell texts into rate observations. The
// first cell carries the product label; the cells after it map positionally
// onto the configured column layout. Cells that hold no rate are dropped;
// an Extractor never fails a row.
type Extractor struct {
	columns []string
	logger  *zap.Logger
}

func NewExtractor(columns []string, logger *zap.Logger) *Extractor {
	return &Extractor{columns: columns, logger: logger}
}

func (e *Extractor) Extract(bank string, cells []string) []model.RawObservation {
	if bank == "" || len(cells) == 0 {
		return nil
	}

	rateType := model.ClassifyRateType(cells[0])

	// Some products fold their only rate into free text like
	// "18 months = 5.79". That encoding replaces the positional columns
	// for the whole row.
	for _, cell := range cells {
		match := combinedCellRe.FindStringSubmatch(cell)
		if match == nil {
			continue
		}
		rate, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			e.logger.Warn("dropping unparseable combined cell", zap.String("cell", cell))
			continue
		}
		return []model.RawObservation{{
			Bank:       bank,
			TenorLabel: embeddedTenorLabel,
			RateType:   rateType,
			Rate:       rate,
		}}
	}

	var out []model.RawObservation
	for i, column := range e.columns {
		idx := i + 1
		if idx >= len(cells) {
			break
		}
		text := strings.TrimSpace(cells[idx])
		first := rateRe.FindString(text)
		if first == "" {
			// blank cells and footnote markers are routine
			continue
		}
		rate, err := strconv.ParseFloat(first, 64)
		if err != nil {
			e.logger.Warn("dropping unparseable rate cell", zap.String("cell", text))
			continue
		}
		out = append(out, model.RawObservation{
			Bank:       bank,
			TenorLabel: column,
			RateType:   rateType,
			Rate:       rate,
		})
	}
	return out
}
