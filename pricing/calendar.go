package pricing

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidDateRange is returned when a calendar range ends before it starts.
var ErrInvalidDateRange = errors.New("end date must not be before start date")

// ErrInvalidBasePrice is returned when a calendar is requested for a
// non-positive base price.
var ErrInvalidBasePrice = errors.New("base price must be positive")

// CalendarDay is one priced day of a calendar. Price is nil when the day
// could not be priced; the error note explains why.
type CalendarDay struct {
	Date        time.Time        `json:"date"`
	Price       *float64         `json:"price,omitempty"`
	CityFactor  float64          `json:"city_factor"`
	TimeFactor  float64          `json:"time_factor"`
	Source      TimeFactorSource `json:"source"`
	HolidayName string           `json:"holiday_name,omitempty"`
	RuleName    string           `json:"rule_name,omitempty"`
	Notes       []string         `json:"notes,omitempty"`
	ErrorNote   string           `json:"error_note,omitempty"`
}

// CalendarSummary aggregates the successfully priced days of a calendar.
type CalendarSummary struct {
	TotalDays    int     `json:"total_days"`
	PricedDays   int     `json:"priced_days"`
	AveragePrice float64 `json:"average_price"`
	MaxPrice     float64 `json:"max_price"`
	MinPrice     float64 `json:"min_price"`
}

// Calendar is the priced range plus its summary.
type Calendar struct {
	Days    []CalendarDay   `json:"days"`
	Summary CalendarSummary `json:"summary"`
}

// DayInput is everything the generator needs to price one day. The caller
// resolves city demand, holidays and rules up front; generation itself stays
// pure and per-day isolated.
type DayInput struct {
	CityFactor  *float64
	CityNote    string
	LookupError error
}

// GenerateCalendar prices every day in [start, end]. Each day is priced
// independently: a failed day is recorded with a nil price and an error note
// and never aborts its neighbours or the summary.
func GenerateCalendar(basePrice float64, start, end time.Time, dayInputs func(date time.Time) DayInput, holidays []Holiday, rules []CustomRule) (*Calendar, error) {
	if basePrice <= 0 {
		return nil, ErrInvalidBasePrice
	}
	start, end = truncateToDay(start), truncateToDay(end)
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	cal := &Calendar{}
	var sum float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := CalendarDay{Date: d}

		in := dayInputs(d)
		if in.LookupError != nil {
			day.ErrorNote = in.LookupError.Error()
			day.CityFactor = NeutralFactor
			day.TimeFactor = NeutralFactor
			cal.Days = append(cal.Days, day)
			continue
		}

		cityFactor, note := ResolveCityFactor(in.CityFactor)
		if note != "" {
			day.Notes = append(day.Notes, note)
		}
		if in.CityNote != "" {
			day.Notes = append(day.Notes, in.CityNote)
		}
		tf := ResolveTimeFactor(d, holidays, rules)

		price := PriceDay(basePrice, cityFactor, tf.Factor)
		day.Price = &price
		day.CityFactor = cityFactor
		day.TimeFactor = tf.Factor
		day.Source = tf.Source
		day.HolidayName = tf.HolidayName
		day.RuleName = tf.RuleName

		sum += price
		if cal.Summary.PricedDays == 0 || price > cal.Summary.MaxPrice {
			cal.Summary.MaxPrice = price
		}
		if cal.Summary.PricedDays == 0 || price < cal.Summary.MinPrice {
			cal.Summary.MinPrice = price
		}
		cal.Summary.PricedDays++

		cal.Days = append(cal.Days, day)
	}

	cal.Summary.TotalDays = len(cal.Days)
	if cal.Summary.PricedDays > 0 {
		cal.Summary.AveragePrice = math.Round(sum / float64(cal.Summary.PricedDays))
	}
	return cal, nil
}
