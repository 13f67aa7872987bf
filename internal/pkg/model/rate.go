package model

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const (
	RateTypeStandard RateType = "Standard"
	RateTypeSpecial  RateType = "Special"
)

type RateType string

// ClassifyRateType maps a product-label cell to a RateType. A label that
// mentions a special offer counts as Special; everything else, including an
// empty label, is the published headline rate.
func ClassifyRateType(label string) RateType {
	if strings.Contains(strings.ToLower(label), "special") {
		return RateTypeSpecial
	}
	return RateTypeStandard
}

// RawObservation is one rate reading lifted off the page. Bank is already
// canonical, TenorLabel is the raw column label and is resolved downstream.
type RawObservation struct {
	Bank       string
	TenorLabel string
	RateType   RateType
	Rate       float64
}

// CanonicalTenor identifies a mortgage term independent of label spelling.
// Months is a total order over real-world duration; Floating sorts first.
type CanonicalTenor struct {
	Name   string
	Months int
}

// ReducedRate is the lowest observed rate for one (bank, tenor, rate type).
// That triple is the dedup key and the persisted uniqueness constraint.
type ReducedRate struct {
	Bank     string
	Tenor    CanonicalTenor
	RateType RateType
	Rate     float64
}

type Bank struct {
	ID   int64
	Name string
}

type Tenor struct {
	ID     int64
	Name   string
	Months int
}

type BankRate struct {
	ID        int64
	BankID    int64
	TenorID   int64
	Rate      float64
	RateType  RateType
	UpdatedAt time.Time
}

// Result summarizes one scrape-and-store cycle.
type Result struct {
	Observed int // raw observations parsed off the page
	Unique   int // distinct keys left after reduction
	Updated  int // rows the store accepted
	AsOf     civil.Date
	Took     time.Duration
}
