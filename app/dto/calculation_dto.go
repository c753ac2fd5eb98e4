package dto

// CalculationOverrides carries optional per-request parameter overrides.
// Rates are percent units as stored in configuration (3.0 means 3%).
type CalculationOverrides struct {
	TargetAnnualReturn  *float64 `json:"target_annual_return,omitempty" validate:"omitempty,gte=0,lte=50"`
	InvestmentPeriod    *float64 `json:"investment_period,omitempty" validate:"omitempty,gte=1,lte=30"`
	ResidualValueRate   *float64 `json:"residual_value_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	AnnualOperatingRate *float64 `json:"annual_operating_rate,omitempty" validate:"omitempty,gt=0,lte=100"`
	OperatingCostRate   *float64 `json:"operating_cost_rate,omitempty" validate:"omitempty,gte=0,lt=100"`
}

// CalculateBaseRateRequest represents the payload for a base-rate calculation.
type CalculateBaseRateRequest struct {
	PurchasePrice  float64               `json:"purchase_price" validate:"required,gt=0"`
	PurchaseDate   string                `json:"purchase_date" validate:"required"`
	ConditionGrade *string               `json:"condition_grade,omitempty" validate:"omitempty,oneof=A B C D"`
	Overrides      *CalculationOverrides `json:"overrides,omitempty"`
}

// BreakdownDTO mirrors every intermediate quantity of the calculation.
type BreakdownDTO struct {
	TotalReturn     float64 `json:"total_return"`
	ResidualValue   float64 `json:"residual_value"`
	RequiredRevenue float64 `json:"required_revenue"`
	GrossRevenue    float64 `json:"gross_revenue"`
	AnnualRevenue   float64 `json:"annual_revenue"`
	OperatingDays   float64 `json:"operating_days"`
	BaseDailyPrice  float64 `json:"base_daily_price"`
	ConditionFactor float64 `json:"condition_factor"`
}

// ParamsUsedDTO echoes the resolved parameter set, percent units.
type ParamsUsedDTO struct {
	TargetAnnualReturn  float64 `json:"target_annual_return"`
	InvestmentPeriod    float64 `json:"investment_period"`
	ResidualValueRate   float64 `json:"residual_value_rate"`
	AnnualOperatingRate float64 `json:"annual_operating_rate"`
	OperatingCostRate   float64 `json:"operating_cost_rate"`
}

// CalculationResultResponse is the outcome of one base-rate run.
type CalculationResultResponse struct {
	SuggestedPrice float64       `json:"suggested_price"`
	BaseDailyPrice float64       `json:"base_daily_price"`
	AgeMonths      int           `json:"age_months"`
	ConditionGrade string        `json:"condition_grade"`
	GradeLabel     string        `json:"grade_label"`
	Breakdown      BreakdownDTO  `json:"breakdown"`
	Params         ParamsUsedDTO `json:"params"`
	Warnings       []string      `json:"warnings,omitempty"`
	Explanation    []string      `json:"explanation"`
}
