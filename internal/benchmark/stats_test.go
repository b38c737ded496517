package benchmark

import (
	"errors"
	"math"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func series(closes ...float64) []Point {
	out := make([]Point, len(closes))
	for i, c := range closes {
		out[i] = Point{Date: day(i), Close: c}
	}
	return out
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAlign(t *testing.T) {
	t.Parallel()

	asset := []Point{
		{Date: day(2), Close: 12},
		{Date: day(0), Close: 10},
		{Date: day(1), Close: 11},
		{Date: day(3), Close: 0},
	}
	bench := []Point{
		{Date: day(0), Close: 100},
		{Date: day(2), Close: 102},
		{Date: day(3), Close: 103},
	}

	a, b := Align(asset, bench)
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("Align() lengths = %d, %d, want 2, 2", len(a), len(b))
	}
	if a[0].Close != 10 || a[1].Close != 12 {
		t.Errorf("asset closes = %v, %v", a[0].Close, a[1].Close)
	}
	if b[0].Close != 100 || b[1].Close != 102 {
		t.Errorf("bench closes = %v, %v", b[0].Close, b[1].Close)
	}
}

func TestCompute_InsufficientData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		asset []Point
		bench []Point
	}{
		{"empty", nil, nil},
		{"single point", series(10), series(100)},
		{"mismatched", series(10, 11), series(100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.asset, tt.bench, 0)
			if !errors.Is(err, ErrInsufficientData) {
				t.Errorf("Compute() error = %v, want ErrInsufficientData", err)
			}
		})
	}
}

func TestCompute_IdenticalSeries(t *testing.T) {
	t.Parallel()

	p := series(100, 102, 101, 105, 107, 106)
	stats, err := Compute(p, p, 0)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if !approx(stats.Beta, 1) {
		t.Errorf("Beta = %v, want 1", stats.Beta)
	}
	if !approx(stats.Correlation, 1) {
		t.Errorf("Correlation = %v, want 1", stats.Correlation)
	}
	if !approx(stats.Alpha, 0) {
		t.Errorf("Alpha = %v, want 0", stats.Alpha)
	}
	if !approx(stats.Volatility, stats.BenchmarkVolatility) {
		t.Errorf("Volatility = %v, BenchmarkVolatility = %v", stats.Volatility, stats.BenchmarkVolatility)
	}
	if !approx(stats.TotalReturn, 0.06) {
		t.Errorf("TotalReturn = %v, want 0.06", stats.TotalReturn)
	}
	if stats.Observations != 6 {
		t.Errorf("Observations = %d, want 6", stats.Observations)
	}
}

func TestCompute_LeveragedSeries(t *testing.T) {
	t.Parallel()

	// Asset returns are exactly twice the benchmark returns.
	benchReturns := []float64{0.01, -0.02, 0.015, 0.005, -0.01}
	bench := []Point{{Date: day(0), Close: 100}}
	asset := []Point{{Date: day(0), Close: 100}}
	for i, r := range benchReturns {
		bench = append(bench, Point{Date: day(i + 1), Close: bench[i].Close * (1 + r)})
		asset = append(asset, Point{Date: day(i + 1), Close: asset[i].Close * (1 + 2*r)})
	}

	stats, err := Compute(asset, bench, 0)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if math.Abs(stats.Beta-2) > 1e-6 {
		t.Errorf("Beta = %v, want 2", stats.Beta)
	}
	if math.Abs(stats.Correlation-1) > 1e-6 {
		t.Errorf("Correlation = %v, want 1", stats.Correlation)
	}
	if math.Abs(stats.Volatility-2*stats.BenchmarkVolatility) > 1e-6 {
		t.Errorf("Volatility = %v, want twice %v", stats.Volatility, stats.BenchmarkVolatility)
	}
}

func TestCompute_FlatBenchmark(t *testing.T) {
	t.Parallel()

	stats, err := Compute(series(10, 11, 12), series(100, 100, 100), 0)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if stats.Beta != 0 || stats.Correlation != 0 {
		t.Errorf("Beta = %v, Correlation = %v, want 0, 0", stats.Beta, stats.Correlation)
	}
	if stats.Sharpe <= 0 {
		t.Errorf("Sharpe = %v, want > 0", stats.Sharpe)
	}
}

func TestReturns(t *testing.T) {
	t.Parallel()

	got := Returns(series(100, 110, 99))
	want := []float64{0.1, -0.1}
	if len(got) != len(want) {
		t.Fatalf("Returns() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("Returns()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if Returns(series(1)) != nil {
		t.Error("Returns() of one point should be nil")
	}
}
