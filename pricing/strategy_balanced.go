package pricing

import (
	"fmt"
	"math"
)

// Blend weights of the balanced strategy.
const (
	balancedMarketWeight      = 0.4
	balancedRevenueWeight     = 0.3
	balancedCompetitiveWeight = 0.3
)

// balancedStrategy blends the other three strategies with fixed weights.
// A constituent that cannot run drops out and the remaining weights are
// renormalized, so partial data still yields a usable blend.
type balancedStrategy struct{}

func (balancedStrategy) ID() string   { return StrategyBalanced }
func (balancedStrategy) Name() string { return "Balanced" }

func (balancedStrategy) Compute(ctx StrategyContext) (Candidate, error) {
	type part struct {
		name   string
		weight float64
		cand   Candidate
		err    error
	}
	parts := []part{
		{name: "market based", weight: balancedMarketWeight},
		{name: "revenue optimized", weight: balancedRevenueWeight},
		{name: "competitive", weight: balancedCompetitiveWeight},
	}
	parts[0].cand, parts[0].err = marketBasedStrategy{}.Compute(ctx)
	parts[1].cand, parts[1].err = revenueOptimizedStrategy{}.Compute(ctx)
	parts[2].cand, parts[2].err = competitiveStrategy{}.Compute(ctx)

	var weighted, totalWeight float64
	reasoning := []string{"blend of market, revenue and competitive strategies"}
	var lastErr error
	for _, p := range parts {
		if p.err != nil {
			lastErr = p.err
			reasoning = append(reasoning, fmt.Sprintf("%s unavailable: %v", p.name, p.err))
			continue
		}
		weighted += p.cand.Price * p.weight
		totalWeight += p.weight
		reasoning = append(reasoning, fmt.Sprintf("%s at weight %.0f%%: %s",
			p.name, p.weight*100, formatPrice(p.cand.Price)))
	}
	if totalWeight == 0 {
		return Candidate{}, lastErr
	}

	price := math.Round(weighted / totalWeight)
	reasoning = append(reasoning, fmt.Sprintf("weighted average: %s", formatPrice(price)))

	return Candidate{Price: price, Reasoning: reasoning}, nil
}
