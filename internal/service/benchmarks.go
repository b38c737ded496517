package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/organizai/organizai/internal/benchmark"
	"github.com/organizai/organizai/internal/metrics"
)

const providerMarketData = "market_data"

// Comparer fetches and compares price series.
type Comparer interface {
	Compare(ctx context.Context, symbol, bench, rng string, riskFreeAnnual float64) (*benchmark.Comparison, error)
}

// BenchmarkService compares holdings with market indexes.
type BenchmarkService struct {
	fetcher  Comparer
	riskFree float64
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewBenchmarkService creates a new BenchmarkService. riskFree is the
// annual risk-free rate as a fraction.
func NewBenchmarkService(fetcher Comparer, riskFree float64, recorder metrics.Recorder, logger *slog.Logger) *BenchmarkService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &BenchmarkService{fetcher: fetcher, riskFree: riskFree, metrics: recorder, logger: logger}
}

// Compare computes alpha, beta and Sharpe of symbol against bench.
func (s *BenchmarkService) Compare(ctx context.Context, symbol, bench, rng string) (*benchmark.Comparison, error) {
	if symbol == "" {
		return nil, invalid("symbol", "is required")
	}

	cmp, err := s.fetcher.Compare(ctx, symbol, bench, rng, s.riskFree)
	switch {
	case err == nil:
		s.metrics.IncProviderCall(providerMarketData, "ok")
		return cmp, nil
	case errors.Is(err, benchmark.ErrInvalidRange):
		return nil, invalid("range", "must be one of 1mo, 3mo, 6mo, 1y, 2y, 5y")
	case errors.Is(err, benchmark.ErrSymbolNotFound):
		s.metrics.IncProviderCall(providerMarketData, "not_found")
		return nil, ErrNotFound
	case errors.Is(err, benchmark.ErrInsufficientData):
		return nil, invalid("symbol", "not enough overlapping price history")
	}

	s.metrics.IncProviderCall(providerMarketData, "error")
	s.logger.Error("benchmark fetch failed", "symbol", symbol, "error", err)
	return nil, &ProviderError{
		Provider: providerMarketData,
		Message:  "Market data is unavailable right now, please try again later.",
		Err:      err,
	}
}
