package pricing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradePtr(g ConditionGrade) *ConditionGrade { return &g }

func floatPtr(v float64) *float64 { return &v }

func TestCalculateWithDefaults(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("GradeBReferenceScenario", func(t *testing.T) {
		// 100000 purchase price, default parameters, grade B:
		// total return 115000, residual 30000, required 85000,
		// gross 141666.67, annual 28333.33, 109.5 operating days,
		// base 258.75, suggested round(258.75 x 1.15) = 298.
		in := CalculationInput{
			PurchasePrice: 100000,
			PurchaseDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Overrides:     Overrides{ConditionGrade: gradePtr(ConditionGradeB)},
		}

		res, err := Calculate(in, now)
		require.NoError(t, err)

		assert.InDelta(t, 115000, res.Breakdown.TotalReturn, 0.01)
		assert.InDelta(t, 30000, res.Breakdown.ResidualValue, 0.01)
		assert.InDelta(t, 85000, res.Breakdown.RequiredRevenue, 0.01)
		assert.InDelta(t, 141666.67, res.Breakdown.GrossRevenue, 0.01)
		assert.InDelta(t, 28333.33, res.Breakdown.AnnualRevenue, 0.01)
		assert.InDelta(t, 109.5, res.Breakdown.OperatingDays, 0.001)
		assert.InDelta(t, 258.75, res.Breakdown.BaseDailyPrice, 0.01)
		assert.Equal(t, 1.15, res.Breakdown.ConditionFactor)
		assert.Equal(t, float64(298), res.SuggestedPrice)
		assert.Equal(t, ConditionGradeB, res.Grade)
		assert.NotEmpty(t, res.Explanation)
	})

	t.Run("AgeDetectedGrade", func(t *testing.T) {
		// 26 months old lands in grade B without an override.
		in := CalculationInput{
			PurchasePrice: 100000,
			PurchaseDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		}

		res, err := Calculate(in, now)
		require.NoError(t, err)
		assert.Equal(t, 26, res.AgeMonths)
		assert.Equal(t, ConditionGradeB, res.Grade)
		assert.Empty(t, res.Warnings)
	})

	t.Run("OverrideDisagreesWithAgeWarns", func(t *testing.T) {
		in := CalculationInput{
			PurchasePrice: 100000,
			PurchaseDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Overrides:     Overrides{ConditionGrade: gradePtr(ConditionGradeA)},
		}

		res, err := Calculate(in, now)
		require.NoError(t, err)
		assert.Equal(t, ConditionGradeA, res.Grade)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "overrides age-based grade B")
	})

	t.Run("Deterministic", func(t *testing.T) {
		in := CalculationInput{
			PurchasePrice: 250000,
			PurchaseDate:  time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		}

		first, err := Calculate(in, now)
		require.NoError(t, err)
		second, err := Calculate(in, now)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestCalculateParameterLayers(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("OverrideBeatsSnapshot", func(t *testing.T) {
		in := CalculationInput{
			PurchasePrice: 100000,
			PurchaseDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Config:        ConfigSnapshot{TargetAnnualReturn: floatPtr(0.10)},
			Overrides:     Overrides{TargetAnnualReturn: floatPtr(0.05)},
		}

		res, err := Calculate(in, now)
		require.NoError(t, err)
		assert.Equal(t, 0.05, res.Params.TargetAnnualReturn)
	})

	t.Run("SnapshotBeatsDefault", func(t *testing.T) {
		in := CalculationInput{
			PurchasePrice: 100000,
			PurchaseDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Config:        ConfigSnapshot{OperatingCostRate: floatPtr(0.50)},
		}

		res, err := Calculate(in, now)
		require.NoError(t, err)
		assert.Equal(t, 0.50, res.Params.OperatingCostRate)
	})
}

func TestCalculateValidation(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	valid := CalculationInput{
		PurchasePrice: 100000,
		PurchaseDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("NonPositivePrice", func(t *testing.T) {
		in := valid
		in.PurchasePrice = 0
		_, err := Calculate(in, now)
		assert.ErrorIs(t, err, ErrInvalidPurchasePrice)
	})

	t.Run("ZeroPurchaseDate", func(t *testing.T) {
		in := valid
		in.PurchaseDate = time.Time{}
		_, err := Calculate(in, now)
		assert.ErrorIs(t, err, ErrInvalidPurchaseDate)
	})

	t.Run("FuturePurchaseDate", func(t *testing.T) {
		in := valid
		in.PurchaseDate = now.AddDate(0, 1, 0)
		_, err := Calculate(in, now)
		assert.ErrorIs(t, err, ErrInvalidPurchaseDate)
	})

	t.Run("UnknownGradeOverride", func(t *testing.T) {
		in := valid
		in.Overrides.ConditionGrade = gradePtr(ConditionGrade("Z"))
		_, err := Calculate(in, now)
		assert.ErrorIs(t, err, ErrInvalidGrade)
	})

	t.Run("ResidualRateAtOneIsAccepted", func(t *testing.T) {
		in := valid
		in.Config.ResidualValueRate = floatPtr(1.0)
		res, err := Calculate(in, now)
		require.NoError(t, err)
		assert.InDelta(t, 100000, res.Breakdown.ResidualValue, 0.01)
		assert.InDelta(t, 15000, res.Breakdown.RequiredRevenue, 0.01)
	})

	t.Run("ResidualRateAboveOne", func(t *testing.T) {
		in := valid
		in.Config.ResidualValueRate = floatPtr(1.01)
		_, err := Calculate(in, now)
		assert.ErrorIs(t, err, ErrResidualRateOutOfRange)
	})

	t.Run("ZeroOperatingRate", func(t *testing.T) {
		in := valid
		in.Config.AnnualOperatingRate = floatPtr(0)
		_, err := Calculate(in, now)
		assert.ErrorIs(t, err, ErrOperatingRateOutOfRange)
	})

	t.Run("CostRateAtOne", func(t *testing.T) {
		in := valid
		in.Config.OperatingCostRate = floatPtr(1.0)
		_, err := Calculate(in, now)
		assert.ErrorIs(t, err, ErrCostRateOutOfRange)
	})

	t.Run("NonPositivePeriod", func(t *testing.T) {
		in := valid
		in.Config.InvestmentPeriod = floatPtr(0)
		_, err := Calculate(in, now)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})
}

func TestCalculateWarnings(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("ImplausibleTargetReturn", func(t *testing.T) {
		in := CalculationInput{
			PurchasePrice: 100000,
			PurchaseDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Config:        ConfigSnapshot{TargetAnnualReturn: floatPtr(0.60)},
		}

		res, err := Calculate(in, now)
		require.NoError(t, err)
		assert.True(t, hasWarning(res.Warnings, "plausible 0%-50% band"),
			"expected a target return plausibility warning")
	})

	t.Run("DailyPriceAbovePlausibleCeiling", func(t *testing.T) {
		// An aggressive parameter set pushes the daily rate far above 2%
		// of the purchase price.
		in := CalculationInput{
			PurchasePrice: 100000,
			PurchaseDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Config: ConfigSnapshot{
				TargetAnnualReturn:  floatPtr(0.50),
				InvestmentPeriod:    floatPtr(1),
				ResidualValueRate:   floatPtr(0),
				AnnualOperatingRate: floatPtr(0.05),
				OperatingCostRate:   floatPtr(0),
			},
		}

		res, err := Calculate(in, now)
		require.NoError(t, err)
		assert.True(t, hasWarning(res.Warnings, "above the plausible 2% ceiling"),
			"expected a ratio ceiling warning")
	})
}

func hasWarning(warnings []string, sub string) bool {
	for _, w := range warnings {
		if strings.Contains(w, sub) {
			return true
		}
	}
	return false
}
