package pricing

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoMarketData is returned when a market-dependent strategy has no market
// average to anchor on.
var ErrNoMarketData = errors.New("no market data available for this model")

// marketBasedStrategy anchors on the same-model market average and adjusts it
// for condition grade, mileage and age.
type marketBasedStrategy struct{}

func (marketBasedStrategy) ID() string   { return StrategyMarketBased }
func (marketBasedStrategy) Name() string { return "Market based" }

func (marketBasedStrategy) Compute(ctx StrategyContext) (Candidate, error) {
	if ctx.Market.AveragePrice <= 0 {
		return Candidate{}, ErrNoMarketData
	}

	grade := ctx.Vehicle.Grade(ctx.Now)
	conditionAdj := conditionAdjustment(grade)
	mileageAdj := mileageAdjustment(ctx.Vehicle.MileageKm)
	ageAdj := ageAdjustment(ctx.Vehicle.PurchaseDate, ctx.Now)

	price := math.Round(ctx.Market.AveragePrice * conditionAdj * mileageAdj * ageAdj)

	reasoning := []string{
		fmt.Sprintf("same-model market average is %s", formatPrice(ctx.Market.AveragePrice)),
		fmt.Sprintf("condition grade %s applies a %.2fx premium", grade, conditionAdj),
	}
	if mileageAdj != NeutralFactor {
		reasoning = append(reasoning, fmt.Sprintf("mileage adjustment %.2f applied", mileageAdj))
	}
	if ageAdj != NeutralFactor {
		reasoning = append(reasoning, fmt.Sprintf("age adjustment %.2f applied", ageAdj))
	}
	reasoning = append(reasoning, fmt.Sprintf("suggested price: %s", formatPrice(price)))

	return Candidate{Price: price, Reasoning: reasoning}, nil
}
