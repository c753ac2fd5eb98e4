package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var strategyNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func testMarket() MarketData {
	return MarketData{
		AveragePrice:     300,
		CompetitorPrices: []float64{200, 250, 300, 400},
		MinPrice:         200,
		MaxPrice:         400,
	}
}

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, []string{
		StrategyMarketBased,
		StrategyRevenueOptimized,
		StrategyCompetitive,
		StrategyBalanced,
	}, DefaultRegistry.IDs())

	for _, id := range DefaultRegistry.IDs() {
		s, ok := DefaultRegistry.Lookup(id)
		require.True(t, ok)
		assert.Equal(t, id, s.ID())
		assert.NotEmpty(t, s.Name())
	}
}

type stubStrategy struct {
	id    string
	price float64
}

func (s stubStrategy) ID() string   { return s.id }
func (s stubStrategy) Name() string { return s.id }
func (s stubStrategy) Compute(StrategyContext) (Candidate, error) {
	return Candidate{Price: s.price}, nil
}

func TestRegistryExtension(t *testing.T) {
	reg := NewRegistry()
	reg.Register(stubStrategy{id: "alpha", price: 100})
	reg.Register(stubStrategy{id: "beta", price: 200})
	assert.Equal(t, []string{"alpha", "beta"}, reg.IDs())

	// Re-registering replaces the strategy without duplicating the order.
	reg.Register(stubStrategy{id: "alpha", price: 150})
	assert.Equal(t, []string{"alpha", "beta"}, reg.IDs())
	s, ok := reg.Lookup("alpha")
	require.True(t, ok)
	cand, err := s.Compute(StrategyContext{})
	require.NoError(t, err)
	assert.Equal(t, float64(150), cand.Price)

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)
}

func TestMarketBasedStrategy(t *testing.T) {
	s, _ := DefaultRegistry.Lookup(StrategyMarketBased)

	t.Run("AnchorsOnMarketAverage", func(t *testing.T) {
		ctx := StrategyContext{
			Vehicle: VehicleSnapshot{VehicleID: "v1", CurrentPrice: 320},
			Market:  testMarket(),
			Now:     strategyNow,
		}
		cand, err := s.Compute(ctx)
		require.NoError(t, err)
		// Default grade B applies a 1.15 premium to the 300 average.
		assert.Equal(t, float64(345), cand.Price)
		assert.NotEmpty(t, cand.Reasoning)
	})

	t.Run("MileageAndAgeDiscount", func(t *testing.T) {
		purchase := strategyNow.AddDate(-6, 0, 0)
		mileage := 160000.0
		grade := ConditionGradeD
		ctx := StrategyContext{
			Vehicle: VehicleSnapshot{
				VehicleID:      "v1",
				CurrentPrice:   320,
				PurchaseDate:   &purchase,
				MileageKm:      &mileage,
				ConditionGrade: &grade,
			},
			Market: testMarket(),
			Now:    strategyNow,
		}
		cand, err := s.Compute(ctx)
		require.NoError(t, err)
		// 300 x 0.75 x 0.90 x 0.90 = 182.25
		assert.Equal(t, float64(182), cand.Price)
	})

	t.Run("NoMarketData", func(t *testing.T) {
		ctx := StrategyContext{
			Vehicle: VehicleSnapshot{VehicleID: "v1", CurrentPrice: 320},
			Now:     strategyNow,
		}
		_, err := s.Compute(ctx)
		assert.ErrorIs(t, err, ErrNoMarketData)
	})
}

func TestRevenueOptimizedStrategy(t *testing.T) {
	s, _ := DefaultRegistry.Lookup(StrategyRevenueOptimized)

	t.Run("BackSolvesFromPurchasePrice", func(t *testing.T) {
		purchasePrice := 100000.0
		ctx := StrategyContext{
			Vehicle: VehicleSnapshot{VehicleID: "v1", CurrentPrice: 320, PurchasePrice: &purchasePrice},
			Now:     strategyNow,
		}
		cand, err := s.Compute(ctx)
		require.NoError(t, err)
		// 100000 x 1.03 / 5 / 0.6 / 109.5 = 313.55, grade B premium -> 361.
		assert.Equal(t, float64(361), cand.Price)
	})

	t.Run("MoreUtilizationMeansLowerRate", func(t *testing.T) {
		purchasePrice := 100000.0
		low := StrategyContext{
			Vehicle: VehicleSnapshot{VehicleID: "v1", PurchasePrice: &purchasePrice},
			Config:  ConfigSnapshot{AnnualOperatingRate: floatPtr(0.30)},
			Now:     strategyNow,
		}
		high := low
		high.Config = ConfigSnapshot{AnnualOperatingRate: floatPtr(0.60)}

		lowCand, err := s.Compute(low)
		require.NoError(t, err)
		highCand, err := s.Compute(high)
		require.NoError(t, err)
		assert.Less(t, highCand.Price, lowCand.Price)
	})

	t.Run("NoPurchasePrice", func(t *testing.T) {
		ctx := StrategyContext{
			Vehicle: VehicleSnapshot{VehicleID: "v1", CurrentPrice: 320},
			Now:     strategyNow,
		}
		_, err := s.Compute(ctx)
		assert.ErrorIs(t, err, ErrNoPurchasePrice)
	})
}

func TestCompetitiveStrategy(t *testing.T) {
	s, _ := DefaultRegistry.Lookup(StrategyCompetitive)

	t.Run("PositionsByGrade", func(t *testing.T) {
		cases := []struct {
			grade ConditionGrade
			price float64
		}{
			{ConditionGradeA, 400}, // third quartile
			{ConditionGradeB, 300}, // median
			{ConditionGradeC, 250}, // first quartile
			{ConditionGradeD, 225}, // below first quartile
		}
		for _, tc := range cases {
			grade := tc.grade
			ctx := StrategyContext{
				Vehicle: VehicleSnapshot{VehicleID: "v1", CurrentPrice: 320, ConditionGrade: &grade},
				Market:  testMarket(),
				Now:     strategyNow,
			}
			cand, err := s.Compute(ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.price, cand.Price, "grade %s", tc.grade)
		}
	})

	t.Run("FallsBackToRevenueWithoutCompetitors", func(t *testing.T) {
		purchasePrice := 100000.0
		ctx := StrategyContext{
			Vehicle: VehicleSnapshot{VehicleID: "v1", CurrentPrice: 320, PurchasePrice: &purchasePrice},
			Now:     strategyNow,
		}
		cand, err := s.Compute(ctx)
		require.NoError(t, err)
		assert.Equal(t, float64(361), cand.Price)
		assert.Contains(t, cand.Reasoning[0], "falling back to revenue back-solve")
	})

	t.Run("ErrorsWhenFallbackImpossible", func(t *testing.T) {
		ctx := StrategyContext{
			Vehicle: VehicleSnapshot{VehicleID: "v1", CurrentPrice: 320},
			Now:     strategyNow,
		}
		_, err := s.Compute(ctx)
		assert.ErrorIs(t, err, ErrNoPurchasePrice)
	})
}

func TestBalancedStrategy(t *testing.T) {
	s, _ := DefaultRegistry.Lookup(StrategyBalanced)

	t.Run("BlendsAllThree", func(t *testing.T) {
		purchasePrice := 100000.0
		ctx := StrategyContext{
			Vehicle: VehicleSnapshot{VehicleID: "v1", CurrentPrice: 320, PurchasePrice: &purchasePrice},
			Market:  testMarket(),
			Now:     strategyNow,
		}
		cand, err := s.Compute(ctx)
		require.NoError(t, err)
		// 345 x 0.4 + 361 x 0.3 + 300 x 0.3 = 336.3
		assert.Equal(t, float64(336), cand.Price)
	})

	t.Run("RenormalizesWhenConstituentDrops", func(t *testing.T) {
		purchasePrice := 100000.0
		ctx := StrategyContext{
			Vehicle: VehicleSnapshot{VehicleID: "v1", CurrentPrice: 320, PurchasePrice: &purchasePrice},
			Now:     strategyNow,
		}
		cand, err := s.Compute(ctx)
		require.NoError(t, err)
		// Both surviving constituents back-solve to 361.
		assert.Equal(t, float64(361), cand.Price)
		assert.Contains(t, cand.Reasoning[1], "unavailable")
	})

	t.Run("ErrorsWhenNothingRuns", func(t *testing.T) {
		ctx := StrategyContext{
			Vehicle: VehicleSnapshot{VehicleID: "v1", CurrentPrice: 320},
			Now:     strategyNow,
		}
		_, err := s.Compute(ctx)
		assert.Error(t, err)
	})
}

func TestConfidence(t *testing.T) {
	incomplete := VehicleSnapshot{VehicleID: "v1"}
	purchasePrice := 100000.0
	purchaseDate := strategyNow.AddDate(-1, 0, 0)
	mileage := 40000.0
	complete := VehicleSnapshot{
		VehicleID:     "v1",
		PurchasePrice: &purchasePrice,
		PurchaseDate:  &purchaseDate,
		MileageKm:     &mileage,
	}
	thinMarket := MarketData{CompetitorPrices: []float64{200, 300}}
	deepMarket := MarketData{CompetitorPrices: []float64{200, 250, 300, 350, 400}}

	assert.Equal(t, 70, Confidence(incomplete, thinMarket, StrategyMarketBased))
	assert.Equal(t, 80, Confidence(incomplete, deepMarket, StrategyMarketBased))
	assert.Equal(t, 90, Confidence(complete, deepMarket, StrategyMarketBased))
	assert.Equal(t, 95, Confidence(complete, deepMarket, StrategyBalanced), "capped at 95")
}

func TestEvaluateImpact(t *testing.T) {
	market := MarketData{AveragePrice: 300}

	t.Run("RevenueChangePercent", func(t *testing.T) {
		impact := EvaluateImpact(300, 330, market)
		assert.Equal(t, 10.0, impact.RevenueChangePercent)
		assert.Equal(t, CompetitivenessMedium, impact.Competitiveness)
	})

	t.Run("BelowMarketIsHighCompetitiveness", func(t *testing.T) {
		impact := EvaluateImpact(300, 240, market)
		assert.Equal(t, CompetitivenessHigh, impact.Competitiveness)
		assert.Contains(t, impact.MarketPosition, "below market average")
	})

	t.Run("AboveMarketIsLowCompetitiveness", func(t *testing.T) {
		impact := EvaluateImpact(300, 360, market)
		assert.Equal(t, CompetitivenessLow, impact.Competitiveness)
		assert.Contains(t, impact.MarketPosition, "premium positioning")
	})

	t.Run("NoMarketReference", func(t *testing.T) {
		impact := EvaluateImpact(300, 330, MarketData{})
		assert.Equal(t, "no market reference available", impact.MarketPosition)
	})

	t.Run("ZeroCurrentPrice", func(t *testing.T) {
		impact := EvaluateImpact(0, 330, market)
		assert.Equal(t, 0.0, impact.RevenueChangePercent)
	})
}

func TestCompareMarket(t *testing.T) {
	market := testMarket()

	assert.Equal(t, "at", CompareMarket(300, market).Position)
	assert.Equal(t, "below", CompareMarket(290, market).Position)
	assert.Equal(t, "above", CompareMarket(310, market).Position)

	cmp := CompareMarket(300, market)
	assert.Equal(t, 4, cmp.CompetitorCount)
	assert.Equal(t, float64(200), cmp.MinPrice)
	assert.Equal(t, float64(400), cmp.MaxPrice)

	assert.Equal(t, "at", CompareMarket(500, MarketData{}).Position)
}
