package pricing

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Hard validation failures of the base-rate calculator.
var (
	ErrInvalidPurchasePrice    = errors.New("purchase price must be positive")
	ErrInvalidPurchaseDate     = errors.New("purchase date must be set and not in the future")
	ErrInvalidGrade            = errors.New("unknown condition grade")
	ErrResidualRateOutOfRange  = errors.New("residual value rate must be in [0, 1]")
	ErrOperatingRateOutOfRange = errors.New("annual operating rate must be in (0, 1]")
	ErrCostRateOutOfRange      = errors.New("operating cost rate must be in [0, 1)")
	ErrInvalidPeriod           = errors.New("investment period must be positive")
)

// DaysPerYear is the calendar basis of the financial model.
const DaysPerYear = 365.0

// Built-in financial model defaults, as fractions.
const (
	DefaultTargetAnnualReturn  = 0.03
	DefaultInvestmentPeriod    = 5.0
	DefaultResidualValueRate   = 0.30
	DefaultAnnualOperatingRate = 0.30
	DefaultOperatingCostRate   = 0.40
)

// Plausibility band for the daily-price-to-purchase-price ratio.
const (
	ratioTooHigh = 0.02
	ratioTooLow  = 0.0005
)

// ConfigSnapshot is a point-in-time copy of the stored financial parameters,
// expressed as fractions (0.03 means 3%). Nil fields fall through to the
// built-in defaults. A snapshot is taken once per calculation so concurrent
// config edits never produce a mixed parameter set.
type ConfigSnapshot struct {
	TargetAnnualReturn  *float64
	InvestmentPeriod    *float64
	ResidualValueRate   *float64
	AnnualOperatingRate *float64
	OperatingCostRate   *float64
}

// Overrides carries per-request parameter overrides. An override beats the
// config snapshot, which beats the built-in default.
type Overrides struct {
	TargetAnnualReturn  *float64
	InvestmentPeriod    *float64
	ResidualValueRate   *float64
	AnnualOperatingRate *float64
	OperatingCostRate   *float64
	ConditionGrade      *ConditionGrade
}

// CalculationInput describes the vehicle being priced.
type CalculationInput struct {
	PurchasePrice float64
	PurchaseDate  time.Time
	Config        ConfigSnapshot
	Overrides     Overrides
}

// resolvedParams is the flattened parameter set actually used by a run.
type resolvedParams struct {
	TargetAnnualReturn  float64
	InvestmentPeriod    float64
	ResidualValueRate   float64
	AnnualOperatingRate float64
	OperatingCostRate   float64
}

// Breakdown exposes every intermediate quantity of the calculation so the
// result can be explained and audited.
type Breakdown struct {
	TotalReturn     float64 `json:"total_return"`
	ResidualValue   float64 `json:"residual_value"`
	RequiredRevenue float64 `json:"required_revenue"`
	GrossRevenue    float64 `json:"gross_revenue"`
	AnnualRevenue   float64 `json:"annual_revenue"`
	OperatingDays   float64 `json:"operating_days"`
	BaseDailyPrice  float64 `json:"base_daily_price"`
	ConditionFactor float64 `json:"condition_factor"`
}

// CalculationResult is the outcome of one base-rate run.
type CalculationResult struct {
	SuggestedPrice float64        `json:"suggested_price"`
	BaseDailyPrice float64        `json:"base_daily_price"`
	AgeMonths      int            `json:"age_months"`
	Grade          ConditionGrade `json:"grade"`
	GradeLabel     string         `json:"grade_label"`
	Breakdown      Breakdown      `json:"breakdown"`
	Params         ParamsUsed     `json:"params"`
	Warnings       []string       `json:"warnings,omitempty"`
	Explanation    []string       `json:"explanation"`
}

// ParamsUsed echoes the resolved parameter set back to the caller.
type ParamsUsed struct {
	TargetAnnualReturn  float64 `json:"target_annual_return"`
	InvestmentPeriod    float64 `json:"investment_period"`
	ResidualValueRate   float64 `json:"residual_value_rate"`
	AnnualOperatingRate float64 `json:"annual_operating_rate"`
	OperatingCostRate   float64 `json:"operating_cost_rate"`
}

// resolveParams flattens override, snapshot and default layers. Resolution for
// every parameter lives here so no caller can mix layers inconsistently.
func resolveParams(cfg ConfigSnapshot, ov Overrides) resolvedParams {
	pick := func(override, snapshot *float64, def float64) float64 {
		if override != nil {
			return *override
		}
		if snapshot != nil {
			return *snapshot
		}
		return def
	}
	return resolvedParams{
		TargetAnnualReturn:  pick(ov.TargetAnnualReturn, cfg.TargetAnnualReturn, DefaultTargetAnnualReturn),
		InvestmentPeriod:    pick(ov.InvestmentPeriod, cfg.InvestmentPeriod, DefaultInvestmentPeriod),
		ResidualValueRate:   pick(ov.ResidualValueRate, cfg.ResidualValueRate, DefaultResidualValueRate),
		AnnualOperatingRate: pick(ov.AnnualOperatingRate, cfg.AnnualOperatingRate, DefaultAnnualOperatingRate),
		OperatingCostRate:   pick(ov.OperatingCostRate, cfg.OperatingCostRate, DefaultOperatingCostRate),
	}
}

func (p resolvedParams) validate() error {
	if p.InvestmentPeriod <= 0 {
		return ErrInvalidPeriod
	}
	if p.ResidualValueRate < 0 || p.ResidualValueRate > 1 {
		return ErrResidualRateOutOfRange
	}
	if p.AnnualOperatingRate <= 0 || p.AnnualOperatingRate > 1 {
		return ErrOperatingRateOutOfRange
	}
	if p.OperatingCostRate < 0 || p.OperatingCostRate >= 1 {
		return ErrCostRateOutOfRange
	}
	return nil
}

// Calculate runs the base-rate financial model for one vehicle. It is pure:
// the same input and reference time always produce the same result.
//
// The model works backwards from the target return: total return over the
// investment period, minus residual value, grossed up by the operating cost
// share, spread over the operating days of the period, then scaled by the
// vehicle's condition grade.
func Calculate(in CalculationInput, now time.Time) (*CalculationResult, error) {
	if in.PurchasePrice <= 0 {
		return nil, ErrInvalidPurchasePrice
	}
	if in.PurchaseDate.IsZero() || in.PurchaseDate.After(now) {
		return nil, ErrInvalidPurchaseDate
	}

	params := resolveParams(in.Config, in.Overrides)
	if err := params.validate(); err != nil {
		return nil, err
	}

	ageMonths := AgeInMonths(in.PurchaseDate, now)
	detected := GradeForAge(ageMonths)
	band := detected

	var warnings []string
	if in.Overrides.ConditionGrade != nil {
		override, ok := BandForGrade(*in.Overrides.ConditionGrade)
		if !ok {
			return nil, ErrInvalidGrade
		}
		band = override
		if override.Grade != detected.Grade {
			warnings = append(warnings, fmt.Sprintf(
				"condition grade %s overrides age-based grade %s (%d months)",
				override.Grade, detected.Grade, ageMonths))
		}
	}

	totalReturn := in.PurchasePrice * (1 + params.TargetAnnualReturn*params.InvestmentPeriod)
	residualValue := in.PurchasePrice * params.ResidualValueRate
	requiredRevenue := totalReturn - residualValue
	grossRevenue := requiredRevenue / (1 - params.OperatingCostRate)
	annualRevenue := grossRevenue / params.InvestmentPeriod
	operatingDays := DaysPerYear * params.AnnualOperatingRate
	baseDailyPrice := annualRevenue / operatingDays
	suggestedPrice := math.Round(baseDailyPrice * band.PriceFactor)

	if params.TargetAnnualReturn < 0 || params.TargetAnnualReturn > 0.5 {
		warnings = append(warnings, fmt.Sprintf(
			"target annual return %.2f%% is outside the plausible 0%%-50%% band",
			params.TargetAnnualReturn*100))
	}
	if suggestedPrice <= 0 {
		warnings = append(warnings, "calculated price is not positive; review the parameter set")
	}
	if ratio := suggestedPrice / in.PurchasePrice; ratio > ratioTooHigh {
		warnings = append(warnings, fmt.Sprintf(
			"daily price is %.2f%% of the purchase price; above the plausible 2%% ceiling",
			ratio*100))
	} else if ratio < ratioTooLow {
		warnings = append(warnings, fmt.Sprintf(
			"daily price is %.3f%% of the purchase price; below the plausible 0.05%% floor",
			ratio*100))
	}

	explanation := []string{
		fmt.Sprintf("total return target: %.2f x (1 + %.4f x %.1f) = %.2f",
			in.PurchasePrice, params.TargetAnnualReturn, params.InvestmentPeriod, totalReturn),
		fmt.Sprintf("residual value: %.2f x %.2f = %.2f",
			in.PurchasePrice, params.ResidualValueRate, residualValue),
		fmt.Sprintf("required rental revenue: %.2f - %.2f = %.2f",
			totalReturn, residualValue, requiredRevenue),
		fmt.Sprintf("gross revenue before costs: %.2f / (1 - %.2f) = %.2f",
			requiredRevenue, params.OperatingCostRate, grossRevenue),
		fmt.Sprintf("annual revenue: %.2f / %.1f = %.2f",
			grossRevenue, params.InvestmentPeriod, annualRevenue),
		fmt.Sprintf("operating days per year: %.0f x %.2f = %.1f",
			DaysPerYear, params.AnnualOperatingRate, operatingDays),
		fmt.Sprintf("base daily price: %.2f / %.1f = %.2f",
			annualRevenue, operatingDays, baseDailyPrice),
		fmt.Sprintf("grade %s premium: %.2f x %.2f = %.0f",
			band.Grade, baseDailyPrice, band.PriceFactor, suggestedPrice),
	}

	return &CalculationResult{
		SuggestedPrice: suggestedPrice,
		BaseDailyPrice: baseDailyPrice,
		AgeMonths:      ageMonths,
		Grade:          band.Grade,
		GradeLabel:     band.Label,
		Breakdown: Breakdown{
			TotalReturn:     totalReturn,
			ResidualValue:   residualValue,
			RequiredRevenue: requiredRevenue,
			GrossRevenue:    grossRevenue,
			AnnualRevenue:   annualRevenue,
			OperatingDays:   operatingDays,
			BaseDailyPrice:  baseDailyPrice,
			ConditionFactor: band.PriceFactor,
		},
		Params: ParamsUsed{
			TargetAnnualReturn:  params.TargetAnnualReturn,
			InvestmentPeriod:    params.InvestmentPeriod,
			ResidualValueRate:   params.ResidualValueRate,
			AnnualOperatingRate: params.AnnualOperatingRate,
			OperatingCostRate:   params.OperatingCostRate,
		},
		Warnings:    warnings,
		Explanation: explanation,
	}, nil
}
