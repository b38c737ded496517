package benchmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultBenchmark is the index used when none is requested.
const DefaultBenchmark = "^BVSP"

// DefaultRange is the history range used when none is requested.
const DefaultRange = "1y"

// DefaultBaseURL is the public chart API.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// ErrInvalidRange is returned for a range outside ValidRanges.
var ErrInvalidRange = errors.New("invalid range")

// ErrSymbolNotFound is returned when the provider has no data for a symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

// ValidRanges lists the accepted history ranges.
var ValidRanges = map[string]bool{
	"1mo": true,
	"3mo": true,
	"6mo": true,
	"1y":  true,
	"2y":  true,
	"5y":  true,
}

// SeriesCache stores fetched series between requests.
type SeriesCache interface {
	GetSeries(ctx context.Context, symbol, rng string) ([]Point, error)
	SetSeries(ctx context.Context, symbol, rng string, points []Point) error
}

// Fetcher downloads daily closes from a chart API.
type Fetcher struct {
	baseURL string
	client  *http.Client
	cache   SeriesCache
}

// NewFetcher creates a Fetcher. cache may be nil.
func NewFetcher(baseURL string, cache SeriesCache) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
		cache:   cache,
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 20 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   5,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// Comparison is the result of comparing a symbol with a benchmark.
type Comparison struct {
	Symbol    string  `json:"symbol"`
	Benchmark string  `json:"benchmark"`
	Range     string  `json:"range"`
	Stats     *Stats  `json:"stats"`
	Asset     []Point `json:"asset"`
	Index     []Point `json:"index"`
}

// Compare fetches both series concurrently and computes statistics over
// the dates they share.
func (f *Fetcher) Compare(ctx context.Context, symbol, bench, rng string, riskFreeAnnual float64) (*Comparison, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	bench = strings.ToUpper(strings.TrimSpace(bench))
	if bench == "" {
		bench = DefaultBenchmark
	}
	if rng == "" {
		rng = DefaultRange
	}
	if !ValidRanges[rng] {
		return nil, ErrInvalidRange
	}

	var asset, index []Point
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		asset, err = f.Series(gctx, symbol, rng)
		return err
	})
	g.Go(func() error {
		var err error
		index, err = f.Series(gctx, bench, rng)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a, b := Align(asset, index)
	stats, err := Compute(a, b, riskFreeAnnual)
	if err != nil {
		return nil, err
	}

	return &Comparison{
		Symbol:    symbol,
		Benchmark: bench,
		Range:     rng,
		Stats:     stats,
		Asset:     a,
		Index:     b,
	}, nil
}

// Series returns daily closes for symbol, using the cache when available.
func (f *Fetcher) Series(ctx context.Context, symbol, rng string) ([]Point, error) {
	if f.cache != nil {
		if cached, err := f.cache.GetSeries(ctx, symbol, rng); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	points, err := f.fetch(ctx, symbol, rng)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		// Cache failures only cost a refetch.
		_ = f.cache.SetSeries(ctx, symbol, rng, points)
	}
	return points, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *Fetcher) fetch(ctx context.Context, symbol, rng string) ([]Point, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		f.baseURL, url.PathEscape(symbol), url.QueryEscape(rng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build chart request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Organizai/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch chart %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch chart %s: unexpected status %d", symbol, resp.StatusCode)
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode chart %s: %w", symbol, err)
	}
	return parseChart(symbol, &body)
}

func parseChart(symbol string, body *chartResponse) ([]Point, error) {
	if body.Chart.Error != nil || len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	result := body.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	closes := result.Indicators.Quote[0].Close

	points := make([]Point, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, Point{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: *closes[i],
		})
	}
	return points, nil
}
