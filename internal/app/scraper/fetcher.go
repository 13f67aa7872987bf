package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/antchfx/htmlquery"
	"github.com/go-resty/resty/v2"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/config"
	"golang.org/x/net/html"
)

// ErrBadStatus marks a non-2xx response from the rates page. Fatal for the
// run; there is no retry.
var ErrBadStatus = errors.New("unexpected response status")

var _ PageFetcher = &Fetcher{}

// Fetcher downloads the borrowing page. One GET per run, with a realistic
// browser identity so the trivial bot filters stay quiet.
type Fetcher struct {
	client *resty.Client
	url    string
}

func NewFetcher(cfg config.Scrape) *Fetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-NZ,en;q=0.9")
	return &Fetcher{client: client, url: cfg.URL}
}

func (f *Fetcher) Fetch(ctx context.Context) (*html.Node, error) {
	res, err := f.client.R().SetContext(ctx).Get(f.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", f.url, err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("%w: %d from %s", ErrBadStatus, res.StatusCode(), f.url)
	}

	doc, err := htmlquery.Parse(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page markup: %w", err)
	}
	return doc, nil
}
