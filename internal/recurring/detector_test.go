package recurring

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
)

var baseDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func newTx(id, desc string, amount string, daysOffset int) *model.Transaction {
	return &model.Transaction{
		ID:          id,
		UserID:      "user-1",
		AccountID:   "acc-1",
		Type:        model.FlowExpense,
		Amount:      decimal.RequireFromString(amount),
		Description: desc,
		Date:        baseDate.AddDate(0, 0, daysOffset),
	}
}

func TestDetect_EmptyInput(t *testing.T) {
	t.Parallel()

	got := Detect(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", got)
	}
}

func TestDetect_NoSeriesWithoutTwoSimilarOccurrences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		txs  []*model.Transaction
	}{
		{
			name: "single transaction",
			txs:  []*model.Transaction{newTx("1", "Netflix", "39.90", 0)},
		},
		{
			name: "different descriptions",
			txs: []*model.Transaction{
				newTx("1", "Netflix", "39.90", 0),
				newTx("2", "Grocery store", "39.90", 30),
				newTx("3", "Gas station", "39.90", 60),
			},
		},
		{
			name: "same description but amounts too far apart",
			txs: []*model.Transaction{
				newTx("1", "Electricity", "100.00", 0),
				newTx("2", "Electricity", "150.00", 30),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Detect(tt.txs); len(got) != 0 {
				t.Errorf("expected no series, got %d: %+v", len(got), got)
			}
		})
	}
}

func TestDetect_MonthlySeries(t *testing.T) {
	t.Parallel()

	txs := []*model.Transaction{
		newTx("3", "SPOTIFY 0032", "21.90", 60),
		newTx("1", "Spotify #0030", "21.90", 0),
		newTx("2", "spotify-0031", "21.90", 30),
	}

	got := Detect(txs)
	if len(got) != 1 {
		t.Fatalf("expected 1 series, got %d", len(got))
	}

	s := got[0]
	if s.Frequency != Monthly {
		t.Errorf("frequency = %s, want %s", s.Frequency, Monthly)
	}
	if s.Occurrences != 3 {
		t.Errorf("occurrences = %d, want 3", s.Occurrences)
	}
	wantImpact := decimal.RequireFromString("21.90").Mul(decimal.NewFromInt(12))
	if !s.AnnualImpact.Equal(wantImpact) {
		t.Errorf("annual impact = %s, want %s", s.AnnualImpact, wantImpact)
	}
	wantNext := baseDate.AddDate(0, 0, 60).AddDate(0, 1, 0)
	if !s.NextDate.Equal(wantNext) {
		t.Errorf("next date = %s, want %s", s.NextDate, wantNext)
	}
	if s.TransactionIDs[0] != "1" || s.TransactionIDs[2] != "3" {
		t.Errorf("transactions not ordered by date: %v", s.TransactionIDs)
	}
}

func TestDetect_TwoOccurrencesThirtyDaysApart(t *testing.T) {
	t.Parallel()

	got := Detect([]*model.Transaction{
		newTx("1", "Gym membership", "120.00", 0),
		newTx("2", "Gym membership", "120.00", 30),
	})
	if len(got) != 1 || got[0].Frequency != Monthly {
		t.Fatalf("expected one monthly series, got %+v", got)
	}
}

func TestDetect_Frequencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		interval int
		want     Frequency
		perYear  int64
	}{
		{"weekly", 7, Weekly, 52},
		{"weekly lower bound", 6, Weekly, 52},
		{"monthly", 31, Monthly, 12},
		{"quarterly", 91, Quarterly, 4},
		{"yearly", 365, Yearly, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			txs := make([]*model.Transaction, 0, 3)
			for i := 0; i < 3; i++ {
				txs = append(txs, newTx(fmt.Sprint(i), "Insurance premium", "50.00", i*tt.interval))
			}

			got := Detect(txs)
			if len(got) != 1 {
				t.Fatalf("expected 1 series, got %d", len(got))
			}
			if got[0].Frequency != tt.want {
				t.Errorf("frequency = %s, want %s", got[0].Frequency, tt.want)
			}
			want := decimal.RequireFromString("50.00").Mul(decimal.NewFromInt(tt.perYear))
			if !got[0].AnnualImpact.Equal(want) {
				t.Errorf("annual impact = %s, want %s", got[0].AnnualImpact, want)
			}
		})
	}
}

func TestDetect_IrregularIntervalDiscarded(t *testing.T) {
	t.Parallel()

	got := Detect([]*model.Transaction{
		newTx("1", "Restaurant", "80.00", 0),
		newTx("2", "Restaurant", "80.00", 15),
	})
	if len(got) != 0 {
		t.Errorf("15-day interval should not be classified, got %+v", got)
	}
}

func TestDetect_IncomeAndExpenseNotMixed(t *testing.T) {
	t.Parallel()

	income := newTx("2", "Transfer", "500.00", 30)
	income.Type = model.FlowIncome

	got := Detect([]*model.Transaction{
		newTx("1", "Transfer", "500.00", 0),
		income,
	})
	if len(got) != 0 {
		t.Errorf("expected no series across flow types, got %+v", got)
	}
}

func TestDetect_SortedByAnnualImpact(t *testing.T) {
	t.Parallel()

	txs := []*model.Transaction{
		newTx("a1", "Streaming", "20.00", 0),
		newTx("a2", "Streaming", "20.00", 30),
		newTx("b1", "Rent", "1500.00", 0),
		newTx("b2", "Rent", "1500.00", 30),
		newTx("c1", "Coffee club", "15.00", 0),
		newTx("c2", "Coffee club", "15.00", 7),
	}

	got := Detect(txs)
	if len(got) != 3 {
		t.Fatalf("expected 3 series, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].AnnualImpact.LessThan(got[i].AnnualImpact) {
			t.Errorf("series not sorted: %s before %s", got[i-1].AnnualImpact, got[i].AnnualImpact)
		}
	}
	if got[0].Normalized != "rent" {
		t.Errorf("expected rent first, got %q", got[0].Normalized)
	}
}

func TestDetect_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	txs := []*model.Transaction{
		newTx("2", "Water bill", "60.00", 30),
		newTx("1", "Water bill", "60.00", 0),
	}
	Detect(txs)
	if txs[0].ID != "2" || txs[1].ID != "1" {
		t.Error("input slice order was modified")
	}
}
