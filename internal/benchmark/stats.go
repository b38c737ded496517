// Package benchmark compares an asset's price history against a benchmark index.
package benchmark

import (
	"errors"
	"math"
	"sort"
	"time"
)

// TradingDays is the number of trading days used to annualize daily figures.
const TradingDays = 252

// ErrInsufficientData is returned when there are not enough aligned points.
var ErrInsufficientData = errors.New("insufficient data to compute statistics")

// Point is a daily closing price.
type Point struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Stats holds performance statistics of an asset relative to a benchmark.
// Alpha, volatility and returns are expressed as fractions (0.05 = 5%).
type Stats struct {
	Observations         int     `json:"observations"`
	Beta                 float64 `json:"beta"`
	Alpha                float64 `json:"alpha"`
	Sharpe               float64 `json:"sharpe"`
	Correlation          float64 `json:"correlation"`
	Volatility           float64 `json:"volatility"`
	BenchmarkVolatility  float64 `json:"benchmark_volatility"`
	TotalReturn          float64 `json:"total_return"`
	BenchmarkTotalReturn float64 `json:"benchmark_total_return"`
}

// Align keeps only the dates present in both series, ordered by date.
// Points with non-positive closes are skipped.
func Align(asset, bench []Point) ([]Point, []Point) {
	byDay := make(map[string]float64, len(bench))
	for _, p := range bench {
		if p.Close > 0 {
			byDay[dayKey(p.Date)] = p.Close
		}
	}

	sorted := make([]Point, len(asset))
	copy(sorted, asset)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var a, b []Point
	seen := make(map[string]bool, len(sorted))
	for _, p := range sorted {
		key := dayKey(p.Date)
		bc, ok := byDay[key]
		if !ok || p.Close <= 0 || seen[key] {
			continue
		}
		seen[key] = true
		a = append(a, p)
		b = append(b, Point{Date: p.Date, Close: bc})
	}
	return a, b
}

// Returns converts closing prices into simple daily returns.
func Returns(points []Point) []float64 {
	if len(points) < 2 {
		return nil
	}
	out := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		out = append(out, points[i].Close/points[i-1].Close-1)
	}
	return out
}

// Compute derives statistics from two aligned price series.
// riskFreeAnnual is the annual risk-free rate as a fraction.
func Compute(asset, bench []Point, riskFreeAnnual float64) (*Stats, error) {
	if len(asset) != len(bench) || len(asset) < 2 {
		return nil, ErrInsufficientData
	}

	ra := Returns(asset)
	rb := Returns(bench)
	rf := riskFreeAnnual / TradingDays

	meanA, meanB := mean(ra), mean(rb)
	varA, varB := variance(ra, meanA), variance(rb, meanB)
	cov := covariance(ra, rb, meanA, meanB)

	stats := &Stats{
		Observations:         len(asset),
		Volatility:           math.Sqrt(varA) * math.Sqrt(TradingDays),
		BenchmarkVolatility:  math.Sqrt(varB) * math.Sqrt(TradingDays),
		TotalReturn:          asset[len(asset)-1].Close/asset[0].Close - 1,
		BenchmarkTotalReturn: bench[len(bench)-1].Close/bench[0].Close - 1,
	}

	if varB > 0 {
		stats.Beta = cov / varB
	}
	if varA > 0 && varB > 0 {
		stats.Correlation = cov / math.Sqrt(varA*varB)
	}
	if varA > 0 {
		stats.Sharpe = (meanA - rf) / math.Sqrt(varA) * math.Sqrt(TradingDays)
	}
	stats.Alpha = (meanA - rf - stats.Beta*(meanB-rf)) * TradingDays

	return stats, nil
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance is the sample variance (n-1).
func variance(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return sum / float64(len(xs)-1)
}

func covariance(xs, ys []float64, mx, my float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0
	}
	var sum float64
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(len(xs)-1)
}
