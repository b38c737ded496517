package planning

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
)

var (
	ErrInvalidAges = errors.New("ages must satisfy current < retirement < life expectancy")
	ErrInvalidPlan = errors.New("amounts cannot be negative and rates must be above -100%")
)

// YearPoint is the projected balance at the end of a year of contributions.
type YearPoint struct {
	Year          int             `json:"year"`
	Age           int             `json:"age"`
	Balance       decimal.Decimal `json:"balance"`
	Contributions decimal.Decimal `json:"contributions"`
}

// Projection is the outcome of a retirement plan.
type Projection struct {
	YearsToRetirement      int             `json:"years_to_retirement"`
	RetirementYears        int             `json:"retirement_years"`
	ProjectedSavings       decimal.Decimal `json:"projected_savings"`
	TotalContributions     decimal.Decimal `json:"total_contributions"`
	MonthlyIncomeAtRetire  decimal.Decimal `json:"monthly_income_at_retirement"`
	RequiredNestEgg        decimal.Decimal `json:"required_nest_egg"`
	Gap                    decimal.Decimal `json:"gap"`
	OnTrack                bool            `json:"on_track"`
	RequiredContribution   decimal.Decimal `json:"required_monthly_contribution"`
	RealAnnualReturn       float64         `json:"real_annual_return_pct"`
	SustainableMonthlyDraw decimal.Decimal `json:"sustainable_monthly_income"`
	Path                   []YearPoint     `json:"path"`
}

// ValidateRetirementPlan checks ages, amounts and rates.
func ValidateRetirementPlan(p *model.RetirementPlan) error {
	if p.CurrentAge < 0 || p.RetirementAge <= p.CurrentAge || p.LifeExpectancy <= p.RetirementAge {
		return ErrInvalidAges
	}
	if p.CurrentSavings.IsNegative() || p.MonthlyContribution.IsNegative() || p.DesiredMonthlyIncome.IsNegative() {
		return ErrInvalidPlan
	}
	if p.ExpectedReturn.LessThanOrEqual(decimal.NewFromInt(-100)) || p.InflationRate.LessThanOrEqual(decimal.NewFromInt(-100)) {
		return ErrInvalidPlan
	}
	return nil
}

// Project computes the savings at retirement with monthly compounding at the
// nominal return, and compares it with the nest egg needed to pay the
// desired income (grown by inflation until retirement) monthly for the
// retirement years, discounted at the real return.
func Project(p *model.RetirementPlan) (*Projection, error) {
	if err := ValidateRetirementPlan(p); err != nil {
		return nil, err
	}

	savings := p.CurrentSavings.InexactFloat64()
	contrib := p.MonthlyContribution.InexactFloat64()
	nominal := p.ExpectedReturn.InexactFloat64() / 100
	inflation := p.InflationRate.InexactFloat64() / 100
	desired := p.DesiredMonthlyIncome.InexactFloat64()

	years := p.RetirementAge - p.CurrentAge
	retireYears := p.LifeExpectancy - p.RetirementAge
	months := years * 12
	retireMonths := retireYears * 12

	r := nominal / 12
	fv := futureValue(savings, contrib, r, months)

	incomeAtRetire := desired * math.Pow(1+inflation, float64(years))
	realAnnual := (1+nominal)/(1+inflation) - 1
	realMonthly := math.Pow(1+realAnnual, 1.0/12) - 1
	required := annuityPV(incomeAtRetire, realMonthly, retireMonths)

	gap := math.Max(0, required-fv)
	requiredContrib := requiredContribution(required, savings, r, months)
	sustainable := annuityPayment(fv, realMonthly, retireMonths)

	proj := &Projection{
		YearsToRetirement:      years,
		RetirementYears:        retireYears,
		ProjectedSavings:       money(fv),
		TotalContributions:     money(contrib * float64(months)),
		MonthlyIncomeAtRetire:  money(incomeAtRetire),
		RequiredNestEgg:        money(required),
		Gap:                    money(gap),
		OnTrack:                fv >= required,
		RequiredContribution:   money(requiredContrib),
		RealAnnualReturn:       math.Round(realAnnual*1e6) / 1e4,
		SustainableMonthlyDraw: money(sustainable),
		Path:                   make([]YearPoint, 0, years+1),
	}

	for y := 0; y <= years; y++ {
		proj.Path = append(proj.Path, YearPoint{
			Year:          y,
			Age:           p.CurrentAge + y,
			Balance:       money(futureValue(savings, contrib, r, y*12)),
			Contributions: money(savings + contrib*float64(y*12)),
		})
	}
	return proj, nil
}

func futureValue(pv, payment, rate float64, n int) float64 {
	if n <= 0 {
		return pv
	}
	if rate == 0 {
		return pv + payment*float64(n)
	}
	growth := math.Pow(1+rate, float64(n))
	return pv*growth + payment*(growth-1)/rate
}

func annuityPV(payment, rate float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	if rate == 0 {
		return payment * float64(n)
	}
	return payment * (1 - math.Pow(1+rate, -float64(n))) / rate
}

func annuityPayment(pv, rate float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	if rate == 0 {
		return pv / float64(n)
	}
	return pv * rate / (1 - math.Pow(1+rate, -float64(n)))
}

// requiredContribution is the monthly payment that grows savings to target.
func requiredContribution(target, savings, rate float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	need := target - futureValue(savings, 0, rate, n)
	if need <= 0 {
		return 0
	}
	if rate == 0 {
		return need / float64(n)
	}
	return need * rate / (math.Pow(1+rate, float64(n)) - 1)
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
