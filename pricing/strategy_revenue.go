package pricing

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoPurchasePrice is returned when a back-solving strategy has no purchase
// price to work from.
var ErrNoPurchasePrice = errors.New("purchase price is required for revenue back-solve")

// revenueOptimizedStrategy back-solves the daily rate that meets the target
// annual return on the purchase price, then applies the condition premium.
// More utilization means a lower required daily rate, so the result decreases
// monotonically in the operating rate.
type revenueOptimizedStrategy struct{}

func (revenueOptimizedStrategy) ID() string   { return StrategyRevenueOptimized }
func (revenueOptimizedStrategy) Name() string { return "Revenue optimized" }

func (revenueOptimizedStrategy) Compute(ctx StrategyContext) (Candidate, error) {
	if ctx.Vehicle.PurchasePrice == nil || *ctx.Vehicle.PurchasePrice <= 0 {
		return Candidate{}, ErrNoPurchasePrice
	}
	purchasePrice := *ctx.Vehicle.PurchasePrice

	params := resolveParams(ctx.Config, Overrides{})
	if err := params.validate(); err != nil {
		return Candidate{}, err
	}

	requiredAnnualRevenue := purchasePrice * (1 + params.TargetAnnualReturn) / params.InvestmentPeriod
	grossRevenue := requiredAnnualRevenue / (1 - params.OperatingCostRate)
	operatingDays := DaysPerYear * params.AnnualOperatingRate
	dailyPrice := grossRevenue / operatingDays

	grade := ctx.Vehicle.Grade(ctx.Now)
	price := math.Round(dailyPrice * conditionAdjustment(grade))

	reasoning := []string{
		fmt.Sprintf("purchase price %s at %.1f%% target annual return",
			formatPrice(purchasePrice), params.TargetAnnualReturn*100),
		fmt.Sprintf("%.0f-year period, %.0f%% operating rate, %.0f%% cost share",
			params.InvestmentPeriod, params.AnnualOperatingRate*100, params.OperatingCostRate*100),
		fmt.Sprintf("grade %s premium applied", grade),
		fmt.Sprintf("required daily rate: %s", formatPrice(price)),
	}

	return Candidate{Price: price, Reasoning: reasoning}, nil
}
