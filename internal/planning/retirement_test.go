package planning

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
)

func basePlan() *model.RetirementPlan {
	return &model.RetirementPlan{
		CurrentAge:           30,
		RetirementAge:        65,
		LifeExpectancy:       90,
		CurrentSavings:       d("10000"),
		MonthlyContribution:  d("500"),
		ExpectedReturn:       d("8"),
		InflationRate:        d("4"),
		DesiredMonthlyIncome: d("5000"),
	}
}

func TestProject_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(p *model.RetirementPlan)
		want   error
	}{
		{"retire before now", func(p *model.RetirementPlan) { p.RetirementAge = 30 }, ErrInvalidAges},
		{"die before retiring", func(p *model.RetirementPlan) { p.LifeExpectancy = 60 }, ErrInvalidAges},
		{"negative savings", func(p *model.RetirementPlan) { p.CurrentSavings = d("-1") }, ErrInvalidPlan},
		{"total loss rate", func(p *model.RetirementPlan) { p.ExpectedReturn = d("-100") }, ErrInvalidPlan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := basePlan()
			tt.mutate(p)
			if _, err := Project(p); !errors.Is(err, tt.want) {
				t.Errorf("Project() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestProject_ZeroRates(t *testing.T) {
	t.Parallel()

	p := &model.RetirementPlan{
		CurrentAge:           60,
		RetirementAge:        61,
		LifeExpectancy:       62,
		CurrentSavings:       d("1000"),
		MonthlyContribution:  d("100"),
		ExpectedReturn:       decimal.Zero,
		InflationRate:        decimal.Zero,
		DesiredMonthlyIncome: d("200"),
	}

	proj, err := Project(p)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if !proj.ProjectedSavings.Equal(d("2200")) {
		t.Errorf("ProjectedSavings = %s, want 2200", proj.ProjectedSavings)
	}
	if !proj.RequiredNestEgg.Equal(d("2400")) {
		t.Errorf("RequiredNestEgg = %s, want 2400", proj.RequiredNestEgg)
	}
	if !proj.Gap.Equal(d("200")) {
		t.Errorf("Gap = %s, want 200", proj.Gap)
	}
	if proj.OnTrack {
		t.Error("OnTrack should be false")
	}
	// (2400 - 1000) / 12
	if !proj.RequiredContribution.Equal(d("116.67")) {
		t.Errorf("RequiredContribution = %s, want 116.67", proj.RequiredContribution)
	}
	if len(proj.Path) != 2 || !proj.Path[1].Balance.Equal(d("2200")) {
		t.Errorf("Path = %+v", proj.Path)
	}
}

func TestProject_Growth(t *testing.T) {
	t.Parallel()

	proj, err := Project(basePlan())
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	if proj.YearsToRetirement != 35 || proj.RetirementYears != 25 {
		t.Errorf("years = %d/%d, want 35/25", proj.YearsToRetirement, proj.RetirementYears)
	}
	if len(proj.Path) != 36 {
		t.Fatalf("Path len = %d, want 36", len(proj.Path))
	}
	for i := 1; i < len(proj.Path); i++ {
		if !proj.Path[i].Balance.GreaterThan(proj.Path[i-1].Balance) {
			t.Fatalf("balance not increasing at year %d", i)
		}
	}
	if !proj.Path[len(proj.Path)-1].Balance.Equal(proj.ProjectedSavings) {
		t.Errorf("last path balance %s != projected %s", proj.Path[len(proj.Path)-1].Balance, proj.ProjectedSavings)
	}
	if !proj.ProjectedSavings.GreaterThan(proj.TotalContributions) {
		t.Error("compounding should beat plain contributions")
	}
	if proj.OnTrack != proj.Gap.IsZero() {
		t.Errorf("OnTrack = %v but Gap = %s", proj.OnTrack, proj.Gap)
	}
	// Fisher: 1.08/1.04 - 1 = 3.8462%
	if proj.RealAnnualReturn < 3.84 || proj.RealAnnualReturn > 3.85 {
		t.Errorf("RealAnnualReturn = %v, want ~3.846", proj.RealAnnualReturn)
	}
}

func TestProject_OnTrackNeedsNoContribution(t *testing.T) {
	t.Parallel()

	p := basePlan()
	p.CurrentSavings = d("100000000")
	proj, err := Project(p)
	if err != nil {
		t.Fatal(err)
	}
	if !proj.OnTrack || !proj.Gap.IsZero() || !proj.RequiredContribution.IsZero() {
		t.Errorf("OnTrack = %v, Gap = %s, RequiredContribution = %s", proj.OnTrack, proj.Gap, proj.RequiredContribution)
	}
}
