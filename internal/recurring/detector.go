package recurring

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
)

// Frequency is the detected repetition interval of a series.
type Frequency string

const (
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

const (
	// SimilarityThreshold is the minimum description similarity (exclusive).
	SimilarityThreshold = 0.8
	// AmountTolerance is the maximum relative amount difference (exclusive).
	AmountTolerance = 0.10
	// IntervalTolerance is the allowed relative deviation from a nominal period.
	IntervalTolerance = 0.20
	// MinOccurrences is the smallest group reported as a series.
	MinOccurrences = 2
)

type period struct {
	frequency     Frequency
	nominalDays   float64
	periodsInYear int64
	advance       func(time.Time) time.Time
}

var periods = []period{
	{Weekly, 7, 52, func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }},
	{Monthly, 30, 12, func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }},
	{Quarterly, 90, 4, func(t time.Time) time.Time { return t.AddDate(0, 3, 0) }},
	{Yearly, 365, 1, func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }},
}

// Series is a detected group of transactions repeating at a regular interval.
type Series struct {
	Description     string          `json:"description"`
	Normalized      string          `json:"normalized"`
	Type            model.FlowType  `json:"type"`
	Frequency       Frequency       `json:"frequency"`
	Amount          decimal.Decimal `json:"amount"`
	AnnualImpact    decimal.Decimal `json:"annual_impact"`
	AverageInterval float64         `json:"average_interval_days"`
	Occurrences     int             `json:"occurrences"`
	LastDate        time.Time       `json:"last_date"`
	NextDate        time.Time       `json:"next_date"`
	Confidence      float64         `json:"confidence"`
	CategoryID      *string         `json:"category_id,omitempty"`
	TransactionIDs  []string        `json:"transaction_ids"`
}

type group struct {
	normalized string
	amount     decimal.Decimal
	txType     model.FlowType
	members    []*model.Transaction
}

// Detect finds recurring series in the given transactions, ranked by annual
// impact (largest first). The input slice is not modified.
func Detect(txs []*model.Transaction) []Series {
	if len(txs) < MinOccurrences {
		return []Series{}
	}

	ordered := make([]*model.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].ID < ordered[j].ID
	})

	groups := groupTransactions(ordered)

	result := make([]Series, 0, len(groups))
	for _, g := range groups {
		if s, ok := analyze(g); ok {
			result = append(result, s)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if c := result[i].AnnualImpact.Cmp(result[j].AnnualImpact); c != 0 {
			return c > 0
		}
		return result[i].Normalized < result[j].Normalized
	})

	return result
}

func groupTransactions(ordered []*model.Transaction) []*group {
	var groups []*group
	for _, tx := range ordered {
		norm := Normalize(tx.Description)
		var target *group
		for _, g := range groups {
			if g.txType == tx.Type && Similarity(g.normalized, norm) > SimilarityThreshold && amountsClose(g.amount, tx.Amount) {
				target = g
				break
			}
		}
		if target == nil {
			target = &group{normalized: norm, amount: tx.Amount, txType: tx.Type}
			groups = append(groups, target)
		}
		target.members = append(target.members, tx)
	}
	return groups
}

// amountsClose reports whether a and b differ by less than AmountTolerance
// relative to the larger magnitude.
func amountsClose(a, b decimal.Decimal) bool {
	a, b = a.Abs(), b.Abs()
	largest := decimal.Max(a, b)
	if largest.IsZero() {
		return true
	}
	diff, _ := a.Sub(b).Abs().Div(largest).Float64()
	return diff < AmountTolerance
}

func analyze(g *group) (Series, bool) {
	if len(g.members) < MinOccurrences {
		return Series{}, false
	}

	deltas := make([]float64, 0, len(g.members)-1)
	for i := 1; i < len(g.members); i++ {
		days := g.members[i].Date.Sub(g.members[i-1].Date).Hours() / 24
		deltas = append(deltas, days)
	}
	mean, stddev := meanStd(deltas)

	p, ok := classify(mean)
	if !ok {
		return Series{}, false
	}

	total := decimal.Zero
	ids := make([]string, 0, len(g.members))
	for _, m := range g.members {
		total = total.Add(m.Amount.Abs())
		ids = append(ids, m.ID)
	}
	amount := total.Div(decimal.NewFromInt(int64(len(g.members)))).Round(2)

	last := g.members[len(g.members)-1]
	first := g.members[0]

	confidence := 1.0
	if mean > 0 {
		confidence = math.Max(0, math.Min(1, 1-stddev/mean))
	}

	return Series{
		Description:     first.Description,
		Normalized:      g.normalized,
		Type:            g.txType,
		Frequency:       p.frequency,
		Amount:          amount,
		AnnualImpact:    amount.Mul(decimal.NewFromInt(p.periodsInYear)),
		AverageInterval: math.Round(mean*100) / 100,
		Occurrences:     len(g.members),
		LastDate:        last.Date,
		NextDate:        p.advance(last.Date),
		Confidence:      math.Round(confidence*100) / 100,
		CategoryID:      last.CategoryID,
		TransactionIDs:  ids,
	}, true
}

// classify maps an average interval in days to a known period.
func classify(days float64) (period, bool) {
	for _, p := range periods {
		low := p.nominalDays * (1 - IntervalTolerance)
		high := p.nominalDays * (1 + IntervalTolerance)
		if days >= low && days <= high {
			return p, true
		}
	}
	return period{}, false
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}
