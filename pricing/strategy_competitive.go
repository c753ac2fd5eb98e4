package pricing

import (
	"fmt"
	"math"
)

// competitiveStrategy positions the vehicle inside the competitor price
// distribution by grade: A at the third quartile, B at the median, C at the
// first quartile, D just below it. Without competitors it falls back to the
// revenue back-solve.
type competitiveStrategy struct{}

func (competitiveStrategy) ID() string   { return StrategyCompetitive }
func (competitiveStrategy) Name() string { return "Competitive" }

func (competitiveStrategy) Compute(ctx StrategyContext) (Candidate, error) {
	prices := make([]float64, 0, len(ctx.Market.CompetitorPrices))
	for _, p := range ctx.Market.CompetitorPrices {
		if p > 0 {
			prices = append(prices, p)
		}
	}
	if len(prices) == 0 {
		cand, err := revenueOptimizedStrategy{}.Compute(ctx)
		if err != nil {
			return Candidate{}, err
		}
		cand.Reasoning = append([]string{
			"no competitor prices available; falling back to revenue back-solve",
		}, cand.Reasoning...)
		return cand, nil
	}

	q1, q2, q3 := quartiles(prices)
	grade := ctx.Vehicle.Grade(ctx.Now)

	var price float64
	var position string
	switch grade {
	case ConditionGradeA:
		price, position = math.Round(q3), "premium"
	case ConditionGradeB:
		price, position = math.Round(q2), "mid-market"
	case ConditionGradeC:
		price, position = math.Round(q1), "economy"
	default:
		price, position = math.Round(q1*0.9), "below economy"
	}

	reasoning := []string{
		fmt.Sprintf("analyzed %d competitor prices for this model", len(prices)),
		fmt.Sprintf("competitor range %s to %s, median %s",
			formatPrice(ctx.Market.MinPrice), formatPrice(ctx.Market.MaxPrice), formatPrice(q2)),
		fmt.Sprintf("grade %s positions at the %s tier: %s", grade, position, formatPrice(price)),
	}

	return Candidate{Price: price, Reasoning: reasoning}, nil
}
