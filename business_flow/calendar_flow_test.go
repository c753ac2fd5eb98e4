package businessflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrv/pricing-engine/app/dto"
	"github.com/openrv/pricing-engine/app/services"
	"github.com/openrv/pricing-engine/config"
	"github.com/openrv/pricing-engine/pricing"
)

// newCalendarHarness wires a calendar flow over one model and one store. The
// model has no purchase date, so the mid-grade base price is 298.
func newCalendarHarness(demand *fakeCityDemand, holidays *fakeHolidayCalendar, cfg *config.ProductionConfig) CalendarFlow {
	catalog := &fakeModelCatalog{
		models: map[string]*services.Model{
			"m1": {ID: "m1", Name: "Voyager 450", PurchasePrice: 100000},
		},
	}
	stores := &fakeStoreDirectory{
		stores: map[string]*services.Store{
			"s1": {ID: "s1", Name: "Riverside Depot", CityID: "c1", CityName: "Hangzhou"},
		},
	}
	return NewCalendarFlow(
		newFakeConfigRepo(true),
		catalog,
		stores,
		demand,
		holidays,
		&fakeCustomRuleSource{},
		cfg,
	)
}

func TestGetPriceCalendar(t *testing.T) {
	ctx := context.Background()

	t.Run("NeutralRange", func(t *testing.T) {
		flow := newCalendarHarness(&fakeCityDemand{}, &fakeHolidayCalendar{}, newTestConfig())

		res, err := flow.GetPriceCalendar(ctx, &dto.PriceCalendarRequest{
			ModelID:   "m1",
			StoreID:   "s1",
			StartDate: "2026-09-01",
			EndDate:   "2026-09-03",
		})
		require.NoError(t, err)

		assert.Equal(t, "Voyager 450", res.ModelName)
		assert.Equal(t, "c1", res.CityID)
		assert.Equal(t, "Hangzhou", res.CityName)
		assert.Equal(t, float64(298), res.BasePrice)
		require.Len(t, res.Calendar, 3)

		for _, day := range res.Calendar {
			require.NotNil(t, day.Price)
			assert.Equal(t, float64(298), *day.Price)
			assert.Equal(t, 1.0, day.CityFactor)
			assert.Equal(t, 1.0, day.TimeFactor)
		}
		assert.Equal(t, 3, res.Summary.TotalDays)
		assert.Equal(t, 3, res.Summary.PricedDays)
		assert.Equal(t, float64(298), res.Summary.AveragePrice)
	})

	t.Run("HolidayAndDemandShapeTheRange", func(t *testing.T) {
		holidays := &fakeHolidayCalendar{
			holidays: []pricing.Holiday{{
				Name:       "Mid-Autumn Festival",
				Date:       time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
				Multiplier: 1.5,
			}},
		}
		demand := &fakeCityDemand{factors: map[string]*float64{"2026-09-01": fptr(1.2)}}
		flow := newCalendarHarness(demand, holidays, newTestConfig())

		res, err := flow.GetPriceCalendar(ctx, &dto.PriceCalendarRequest{
			ModelID:   "m1",
			StoreID:   "s1",
			StartDate: "2026-09-01",
			EndDate:   "2026-09-03",
		})
		require.NoError(t, err)
		require.Len(t, res.Calendar, 3)

		assert.Equal(t, float64(358), *res.Calendar[0].Price) // 298 x 1.2
		assert.Equal(t, float64(447), *res.Calendar[1].Price) // 298 x 1.5
		assert.Equal(t, "Mid-Autumn Festival", res.Calendar[1].HolidayName)
		assert.Equal(t, float64(298), *res.Calendar[2].Price)
		assert.Equal(t, float64(447), res.Summary.MaxPrice)
		assert.Equal(t, float64(298), res.Summary.MinPrice)
	})

	t.Run("FailedDayIsIsolated", func(t *testing.T) {
		demand := &fakeCityDemand{
			errDates: map[string]error{"2026-09-02": errors.New("demand service unavailable")},
		}
		flow := newCalendarHarness(demand, &fakeHolidayCalendar{}, newTestConfig())

		res, err := flow.GetPriceCalendar(ctx, &dto.PriceCalendarRequest{
			ModelID:   "m1",
			StoreID:   "s1",
			StartDate: "2026-09-01",
			EndDate:   "2026-09-03",
		})
		require.NoError(t, err)

		assert.Nil(t, res.Calendar[1].Price)
		assert.Equal(t, "demand service unavailable", res.Calendar[1].ErrorNote)
		assert.NotNil(t, res.Calendar[0].Price)
		assert.NotNil(t, res.Calendar[2].Price)
		assert.Equal(t, 2, res.Summary.PricedDays)
	})

	t.Run("RangeTooLarge", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.Pricing.MaxCalendarDays = 5
		flow := newCalendarHarness(&fakeCityDemand{}, &fakeHolidayCalendar{}, cfg)

		_, err := flow.GetPriceCalendar(ctx, &dto.PriceCalendarRequest{
			ModelID:   "m1",
			StoreID:   "s1",
			StartDate: "2026-09-01",
			EndDate:   "2026-09-07",
		})
		assert.True(t, IsDateRangeTooLarge(err))
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		flow := newCalendarHarness(&fakeCityDemand{}, &fakeHolidayCalendar{}, newTestConfig())
		_, err := flow.GetPriceCalendar(ctx, &dto.PriceCalendarRequest{
			ModelID:   "m1",
			StoreID:   "s1",
			StartDate: "2026-09-03",
			EndDate:   "2026-09-01",
		})
		assert.True(t, IsDateRangeInvalid(err))
	})

	t.Run("MalformedDate", func(t *testing.T) {
		flow := newCalendarHarness(&fakeCityDemand{}, &fakeHolidayCalendar{}, newTestConfig())
		_, err := flow.GetPriceCalendar(ctx, &dto.PriceCalendarRequest{
			ModelID:   "m1",
			StoreID:   "s1",
			StartDate: "01-09-2026",
			EndDate:   "2026-09-03",
		})
		assert.True(t, IsDateInvalid(err))
	})

	t.Run("StoreNotFound", func(t *testing.T) {
		flow := newCalendarHarness(&fakeCityDemand{}, &fakeHolidayCalendar{}, newTestConfig())
		_, err := flow.GetPriceCalendar(ctx, &dto.PriceCalendarRequest{
			ModelID:   "m1",
			StoreID:   "missing",
			StartDate: "2026-09-01",
			EndDate:   "2026-09-03",
		})
		assert.True(t, IsStoreNotFound(err))
	})

	t.Run("ModelNotFound", func(t *testing.T) {
		flow := newCalendarHarness(&fakeCityDemand{}, &fakeHolidayCalendar{}, newTestConfig())
		_, err := flow.GetPriceCalendar(ctx, &dto.PriceCalendarRequest{
			ModelID:   "missing",
			StoreID:   "s1",
			StartDate: "2026-09-01",
			EndDate:   "2026-09-03",
		})
		assert.True(t, IsModelNotFound(err))
	})
}

func TestGetDayPriceDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("NeutralDay", func(t *testing.T) {
		flow := newCalendarHarness(&fakeCityDemand{}, &fakeHolidayCalendar{}, newTestConfig())

		res, err := flow.GetDayPriceDetail(ctx, &dto.DayPriceDetailRequest{
			ModelID: "m1",
			CityID:  "c1",
			Date:    "2026-09-01",
		})
		require.NoError(t, err)
		assert.Equal(t, float64(298), res.BasePrice)
		assert.Equal(t, 1.0, res.CityFactor)
		assert.Equal(t, 1.0, res.TimeFactor)
		assert.Equal(t, float64(298), res.DailyRental)
		assert.NotEmpty(t, res.Notes, "missing demand figure should be noted")
	})

	t.Run("DemandFactorApplies", func(t *testing.T) {
		demand := &fakeCityDemand{factors: map[string]*float64{"2026-09-01": fptr(1.2)}}
		flow := newCalendarHarness(demand, &fakeHolidayCalendar{}, newTestConfig())

		res, err := flow.GetDayPriceDetail(ctx, &dto.DayPriceDetailRequest{
			ModelID: "m1",
			CityID:  "c1",
			Date:    "2026-09-01",
		})
		require.NoError(t, err)
		assert.Equal(t, 1.2, res.CityFactor)
		assert.Equal(t, float64(358), res.DailyRental)
		assert.Empty(t, res.Notes)
	})

	t.Run("DemandLookupFailureFallsBackToNeutral", func(t *testing.T) {
		demand := &fakeCityDemand{err: errors.New("demand service unavailable")}
		flow := newCalendarHarness(demand, &fakeHolidayCalendar{}, newTestConfig())

		res, err := flow.GetDayPriceDetail(ctx, &dto.DayPriceDetailRequest{
			ModelID: "m1",
			CityID:  "c1",
			Date:    "2026-09-01",
		})
		require.NoError(t, err)
		assert.Equal(t, 1.0, res.CityFactor)
		assert.Equal(t, float64(298), res.DailyRental)
		assert.Contains(t, res.Notes[0], "city demand factor lookup failed")
	})

	t.Run("HolidayDay", func(t *testing.T) {
		holidays := &fakeHolidayCalendar{
			holidays: []pricing.Holiday{{
				Name:       "National Day",
				Date:       time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
				Multiplier: 1.8,
			}},
		}
		flow := newCalendarHarness(&fakeCityDemand{}, holidays, newTestConfig())

		res, err := flow.GetDayPriceDetail(ctx, &dto.DayPriceDetailRequest{
			ModelID: "m1",
			CityID:  "c1",
			Date:    "2026-10-01",
		})
		require.NoError(t, err)
		assert.Equal(t, 1.8, res.TimeFactor)
		assert.Equal(t, "National Day", res.HolidayName)
		assert.Equal(t, float64(536), res.DailyRental) // round(298 x 1.8)
	})

	t.Run("MalformedDate", func(t *testing.T) {
		flow := newCalendarHarness(&fakeCityDemand{}, &fakeHolidayCalendar{}, newTestConfig())
		_, err := flow.GetDayPriceDetail(ctx, &dto.DayPriceDetailRequest{
			ModelID: "m1",
			CityID:  "c1",
			Date:    "soon",
		})
		assert.True(t, IsDateInvalid(err))
	})
}
