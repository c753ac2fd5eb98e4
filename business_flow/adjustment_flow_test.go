package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrv/pricing-engine/app/dto"
	"github.com/openrv/pricing-engine/app/services"
	"github.com/openrv/pricing-engine/models"
)

// newAdjustmentHarness wires an adjustment flow against in-memory
// collaborators. The model has no purchase date, so the mid-grade base price
// is 298 and a neutral day resolves to exactly that.
func newAdjustmentHarness(demand *fakeCityDemand, history *fakeHistoryRepo) AdjustmentFlow {
	catalog := &fakeModelCatalog{
		models: map[string]*services.Model{
			"m1": {ID: "m1", Name: "Voyager 450", PurchasePrice: 100000},
		},
	}
	return NewAdjustmentFlow(
		newFakeConfigRepo(true),
		catalog,
		demand,
		&fakeHolidayCalendar{},
		&fakeCustomRuleSource{},
		history,
		nil,
		newTestConfig(),
	)
}

func validAdjustmentRequest() *dto.BatchAdjustmentRequest {
	return &dto.BatchAdjustmentRequest{
		VehicleID:   "v1",
		ModelID:     "m1",
		CityID:      "c1",
		Dates:       []string{"2026-09-01", "2026-09-02"},
		AdjustType:  dto.AdjustModeAddFactor,
		FactorName:  "weekend uplift",
		FactorType:  dto.FactorTypePercentage,
		FactorValue: fptr(10),
		Reason:      "seasonal review",
		OperatorID:  "ops-admin",
	}
}

func TestPreviewBatchAdjustment(t *testing.T) {
	ctx := context.Background()

	t.Run("PercentageFactor", func(t *testing.T) {
		history := newFakeHistoryRepo()
		flow := newAdjustmentHarness(&fakeCityDemand{}, history)

		res, err := flow.PreviewBatchAdjustment(ctx, validAdjustmentRequest())
		require.NoError(t, err)
		require.Len(t, res.PreviewData, 2)
		assert.Equal(t, 2, res.AffectedCount)
		assert.Equal(t, []string{"2026-09-01", "2026-09-02"}, res.AffectedDates)

		for _, item := range res.PreviewData {
			assert.Equal(t, float64(298), item.OldPrice)
			assert.Equal(t, float64(328), item.NewPrice) // round(298 x 1.10)
			assert.Equal(t, float64(30), item.ChangeAmount)
			assert.Equal(t, 10.1, item.ChangePercentage)
			assert.Empty(t, item.ErrorNote)
		}

		// Preview is a pure dry run.
		assert.Zero(t, history.savedCount())
	})

	t.Run("FixedFactor", func(t *testing.T) {
		flow := newAdjustmentHarness(&fakeCityDemand{}, newFakeHistoryRepo())
		req := validAdjustmentRequest()
		req.FactorType = dto.FactorTypeFixed
		req.FactorValue = fptr(50)

		res, err := flow.PreviewBatchAdjustment(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, float64(348), res.PreviewData[0].NewPrice)
	})

	t.Run("OverridePrice", func(t *testing.T) {
		flow := newAdjustmentHarness(&fakeCityDemand{}, newFakeHistoryRepo())
		req := validAdjustmentRequest()
		req.AdjustType = dto.AdjustModeOverridePrice
		req.FactorType = ""
		req.FactorValue = nil
		req.OverridePrice = fptr(275.4)

		res, err := flow.PreviewBatchAdjustment(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, float64(275), res.PreviewData[0].NewPrice)
	})

	t.Run("NegativeResultClampedToZero", func(t *testing.T) {
		flow := newAdjustmentHarness(&fakeCityDemand{}, newFakeHistoryRepo())
		req := validAdjustmentRequest()
		req.FactorType = dto.FactorTypeFixed
		req.FactorValue = fptr(-500)

		res, err := flow.PreviewBatchAdjustment(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, float64(0), res.PreviewData[0].NewPrice)
	})

	t.Run("FailedDateIsIsolated", func(t *testing.T) {
		demand := &fakeCityDemand{
			errDates: map[string]error{"2026-09-01": errors.New("demand service unavailable")},
		}
		flow := newAdjustmentHarness(demand, newFakeHistoryRepo())

		res, err := flow.PreviewBatchAdjustment(ctx, validAdjustmentRequest())
		require.NoError(t, err)
		require.Len(t, res.PreviewData, 2)

		assert.Equal(t, "demand service unavailable", res.PreviewData[0].ErrorNote)
		assert.Empty(t, res.PreviewData[1].ErrorNote)
		assert.Equal(t, 1, res.AffectedCount)
		assert.Equal(t, []string{"2026-09-02"}, res.AffectedDates)
	})

	t.Run("DemandFactorAppliesToOldPrice", func(t *testing.T) {
		demand := &fakeCityDemand{factors: map[string]*float64{"2026-09-01": fptr(1.2)}}
		flow := newAdjustmentHarness(demand, newFakeHistoryRepo())
		req := validAdjustmentRequest()
		req.Dates = []string{"2026-09-01"}

		res, err := flow.PreviewBatchAdjustment(ctx, req)
		require.NoError(t, err)
		// 298 x 1.2 = 357.6, rounded 358; +10% = 393.8, rounded 394.
		assert.Equal(t, float64(358), res.PreviewData[0].OldPrice)
		assert.Equal(t, float64(394), res.PreviewData[0].NewPrice)
	})
}

func TestAdjustmentValidation(t *testing.T) {
	ctx := context.Background()
	flow := newAdjustmentHarness(&fakeCityDemand{}, newFakeHistoryRepo())

	cases := []struct {
		name   string
		mutate func(*dto.BatchAdjustmentRequest)
		check  func(error) bool
	}{
		{"MissingVehicle", func(r *dto.BatchAdjustmentRequest) { r.VehicleID = "" }, IsVehicleIDRequired},
		{"MissingReason", func(r *dto.BatchAdjustmentRequest) { r.Reason = "" }, IsAdjustReasonRequired},
		{"NoDates", func(r *dto.BatchAdjustmentRequest) { r.Dates = nil }, IsNoDatesRequested},
		{"UnknownAdjustType", func(r *dto.BatchAdjustmentRequest) { r.AdjustType = "halve_it" }, IsAdjustTypeInvalid},
		{"FactorWithoutValue", func(r *dto.BatchAdjustmentRequest) { r.FactorValue = nil }, IsFactorConfigRequired},
		{"OverrideWithoutPrice", func(r *dto.BatchAdjustmentRequest) {
			r.AdjustType = dto.AdjustModeOverridePrice
			r.OverridePrice = nil
		}, IsOverridePriceRequired},
		{"MalformedDate", func(r *dto.BatchAdjustmentRequest) { r.Dates = []string{"not-a-date"} }, IsDateInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validAdjustmentRequest()
			tc.mutate(req)
			_, err := flow.PreviewBatchAdjustment(ctx, req)
			assert.True(t, tc.check(err), "unexpected error: %v", err)
		})
	}

	t.Run("ModelNotFound", func(t *testing.T) {
		req := validAdjustmentRequest()
		req.ModelID = "missing"
		_, err := flow.PreviewBatchAdjustment(ctx, req)
		assert.True(t, IsModelNotFound(err))
	})
}

func TestCommitBatchAdjustment(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordsCarryParameterSnapshot", func(t *testing.T) {
		demand := &fakeCityDemand{factors: map[string]*float64{"2026-09-01": fptr(1.2)}}
		impl := newAdjustmentHarness(demand, newFakeHistoryRepo()).(*AdjustmentFlowImpl)
		req := validAdjustmentRequest()

		resolved, snapshot, err := impl.resolveAdjustment(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, snapshot)

		records, err := impl.ledgerRecords(req, resolved, snapshot)
		require.NoError(t, err)
		require.Len(t, records, 2)

		first := records[0]
		assert.Equal(t, models.ChangeReasonBatchCalculator, first.ChangeReason)
		assert.Equal(t, models.PriceSourceCalculated, first.PriceSource)
		require.NotNil(t, first.CalcSnapshot)
		assert.Equal(t, float64(100000), first.CalcSnapshot.PurchasePrice)
		assert.Equal(t, "B", first.CalcSnapshot.ConditionGrade)
		assert.Equal(t, 1.15, first.CalcSnapshot.ConditionFactor)
		assert.Equal(t, 0.03, first.CalcSnapshot.TargetAnnualReturn)
		assert.Equal(t, 5.0, first.CalcSnapshot.InvestmentPeriod)
		assert.Equal(t, 0.30, first.CalcSnapshot.ResidualValueRate)
		assert.Equal(t, 0.30, first.CalcSnapshot.AnnualOperatingRate)
		assert.Equal(t, 0.40, first.CalcSnapshot.OperatingCostRate)
		assert.Equal(t, 1.2, first.CalcSnapshot.CityFactor)
		assert.Equal(t, 1.0, first.CalcSnapshot.TimeFactor)

		// The second date saw no demand figure, so its snapshot is neutral.
		second := records[1]
		require.NotNil(t, second.CalcSnapshot)
		assert.Equal(t, 1.0, second.CalcSnapshot.CityFactor)
		assert.Equal(t, 1.0, second.CalcSnapshot.TimeFactor)
	})

	t.Run("AllDatesFailedCommitsNothing", func(t *testing.T) {
		demand := &fakeCityDemand{err: errors.New("demand service unavailable")}
		history := newFakeHistoryRepo()
		flow := newAdjustmentHarness(demand, history)

		res, err := flow.CommitBatchAdjustment(ctx, validAdjustmentRequest())
		require.NoError(t, err)
		assert.Equal(t, 0, res.CommittedCount)
		assert.Zero(t, history.savedCount())
	})

	t.Run("ValidationFailureCommitsNothing", func(t *testing.T) {
		history := newFakeHistoryRepo()
		flow := newAdjustmentHarness(&fakeCityDemand{}, history)
		req := validAdjustmentRequest()
		req.Reason = ""

		_, err := flow.CommitBatchAdjustment(ctx, req)
		assert.True(t, IsAdjustReasonRequired(err))
		assert.Zero(t, history.savedCount())
	})
}
