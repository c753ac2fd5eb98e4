package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neutralDayInputs(time.Time) DayInput { return DayInput{} }

func TestGenerateCalendar(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)

	t.Run("NeutralRange", func(t *testing.T) {
		cal, err := GenerateCalendar(300, start, end, neutralDayInputs, nil, nil)
		require.NoError(t, err)
		require.Len(t, cal.Days, 3)

		for _, day := range cal.Days {
			require.NotNil(t, day.Price)
			assert.Equal(t, float64(300), *day.Price)
			assert.Equal(t, NeutralFactor, day.CityFactor)
			assert.Equal(t, TimeFactorSourceNeutral, day.Source)
		}
		assert.Equal(t, 3, cal.Summary.TotalDays)
		assert.Equal(t, 3, cal.Summary.PricedDays)
		assert.Equal(t, float64(300), cal.Summary.AveragePrice)
		assert.Equal(t, float64(300), cal.Summary.MinPrice)
		assert.Equal(t, float64(300), cal.Summary.MaxPrice)
	})

	t.Run("HolidayAndDemandShapeTheRange", func(t *testing.T) {
		holidays := []Holiday{{Name: "Founding Day", Date: start.AddDate(0, 0, 1), Multiplier: 1.5}}
		demand := 1.2
		inputs := func(d time.Time) DayInput {
			if d.Equal(start) {
				return DayInput{CityFactor: &demand}
			}
			return DayInput{}
		}

		cal, err := GenerateCalendar(300, start, end, inputs, holidays, nil)
		require.NoError(t, err)
		require.Len(t, cal.Days, 3)

		assert.Equal(t, float64(360), *cal.Days[0].Price) // 300 x 1.2
		assert.Equal(t, float64(450), *cal.Days[1].Price) // 300 x 1.5 holiday
		assert.Equal(t, "Founding Day", cal.Days[1].HolidayName)
		assert.Equal(t, float64(300), *cal.Days[2].Price)

		assert.Equal(t, float64(450), cal.Summary.MaxPrice)
		assert.Equal(t, float64(300), cal.Summary.MinPrice)
		assert.Equal(t, float64(370), cal.Summary.AveragePrice)
	})

	t.Run("FailedDayIsIsolated", func(t *testing.T) {
		lookupErr := errors.New("demand service unavailable")
		inputs := func(d time.Time) DayInput {
			if d.Equal(start.AddDate(0, 0, 1)) {
				return DayInput{LookupError: lookupErr}
			}
			return DayInput{}
		}

		cal, err := GenerateCalendar(300, start, end, inputs, nil, nil)
		require.NoError(t, err)
		require.Len(t, cal.Days, 3)

		failed := cal.Days[1]
		assert.Nil(t, failed.Price)
		assert.Equal(t, "demand service unavailable", failed.ErrorNote)

		// Neighbours still priced, summary excludes the failed day.
		assert.NotNil(t, cal.Days[0].Price)
		assert.NotNil(t, cal.Days[2].Price)
		assert.Equal(t, 3, cal.Summary.TotalDays)
		assert.Equal(t, 2, cal.Summary.PricedDays)
		assert.Equal(t, float64(300), cal.Summary.AveragePrice)
	})

	t.Run("SingleDayRange", func(t *testing.T) {
		cal, err := GenerateCalendar(300, start, start, neutralDayInputs, nil, nil)
		require.NoError(t, err)
		assert.Len(t, cal.Days, 1)
		assert.Equal(t, 1, cal.Summary.TotalDays)
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		_, err := GenerateCalendar(300, end, start, neutralDayInputs, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("NonPositiveBasePrice", func(t *testing.T) {
		_, err := GenerateCalendar(0, start, end, neutralDayInputs, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidBasePrice)
	})

	t.Run("MissingDemandNotedNotFatal", func(t *testing.T) {
		cal, err := GenerateCalendar(300, start, start, neutralDayInputs, nil, nil)
		require.NoError(t, err)
		require.NotNil(t, cal.Days[0].Price)
		require.NotEmpty(t, cal.Days[0].Notes)
		assert.Contains(t, cal.Days[0].Notes[0], "using neutral 1.0")
	})
}
