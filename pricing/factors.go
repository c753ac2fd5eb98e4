package pricing

import (
	"time"
)

// NeutralFactor is applied whenever no rule, holiday or demand figure covers a
// day. Lookup misses degrade to it instead of failing the calculation.
const NeutralFactor = 1.0

// HolidayPriority is the fixed priority of national holidays. It sits above
// the neutral factor and below any custom rule with positive priority.
const HolidayPriority = 1

// RuleKind distinguishes how a custom rule selects its days.
type RuleKind string

const (
	// RuleKindDateRange applies to every day between StartDate and EndDate.
	RuleKindDateRange RuleKind = "date_range"
	// RuleKindPeriodic applies to the listed weekdays between StartDate and EndDate.
	RuleKindPeriodic RuleKind = "periodic"
)

// Holiday is one national holiday day with its price multiplier.
type Holiday struct {
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	Multiplier float64   `json:"multiplier"`
}

// CustomRule is an operator-defined time factor rule.
type CustomRule struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Kind       RuleKind       `json:"kind"`
	StartDate  time.Time      `json:"start_date"`
	EndDate    time.Time      `json:"end_date"`
	Weekdays   []time.Weekday `json:"weekdays,omitempty"`
	Priority   int            `json:"priority"`
	Multiplier float64        `json:"multiplier"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AppliesTo reports whether the rule covers the given day.
func (r CustomRule) AppliesTo(date time.Time) bool {
	day := truncateToDay(date)
	if day.Before(truncateToDay(r.StartDate)) || day.After(truncateToDay(r.EndDate)) {
		return false
	}
	if r.Kind == RuleKindPeriodic {
		for _, wd := range r.Weekdays {
			if day.Weekday() == wd {
				return true
			}
		}
		return false
	}
	return true
}

// TimeFactorSource identifies which layer produced the winning time factor.
type TimeFactorSource string

const (
	TimeFactorSourceNeutral    TimeFactorSource = "neutral"
	TimeFactorSourceHoliday    TimeFactorSource = "holiday"
	TimeFactorSourceCustomRule TimeFactorSource = "custom_rule"
)

// TimeFactorResult is the resolved time factor for one day.
type TimeFactorResult struct {
	Factor      float64          `json:"factor"`
	Source      TimeFactorSource `json:"source"`
	RuleID      string           `json:"rule_id,omitempty"`
	RuleName    string           `json:"rule_name,omitempty"`
	HolidayName string           `json:"holiday_name,omitempty"`
	Priority    int              `json:"priority"`
}

// DayFactors bundles both factors applied to one day's price.
type DayFactors struct {
	CityFactor float64          `json:"city_factor"`
	TimeFactor TimeFactorResult `json:"time_factor"`
	Notes      []string         `json:"notes,omitempty"`
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return truncateToDay(a).Equal(truncateToDay(b))
}

// ResolveTimeFactor picks the time factor for a day. Exactly one source wins:
// the applicable custom rule with the highest priority, then the national
// holiday (fixed priority 1), then the neutral factor. Equal-priority custom
// rules are broken by the most recently created rule.
func ResolveTimeFactor(date time.Time, holidays []Holiday, rules []CustomRule) TimeFactorResult {
	var winner *CustomRule
	for i := range rules {
		r := &rules[i]
		if !r.AppliesTo(date) || r.Multiplier <= 0 {
			continue
		}
		if winner == nil ||
			r.Priority > winner.Priority ||
			(r.Priority == winner.Priority && r.CreatedAt.After(winner.CreatedAt)) {
			winner = r
		}
	}

	var holiday *Holiday
	for i := range holidays {
		if sameDay(holidays[i].Date, date) && holidays[i].Multiplier > 0 {
			holiday = &holidays[i]
			break
		}
	}

	if winner != nil && (holiday == nil || winner.Priority > 0) {
		return TimeFactorResult{
			Factor:   winner.Multiplier,
			Source:   TimeFactorSourceCustomRule,
			RuleID:   winner.ID,
			RuleName: winner.Name,
			Priority: winner.Priority,
		}
	}
	if holiday != nil {
		return TimeFactorResult{
			Factor:      holiday.Multiplier,
			Source:      TimeFactorSourceHoliday,
			HolidayName: holiday.Name,
			Priority:    HolidayPriority,
		}
	}
	if winner != nil {
		return TimeFactorResult{
			Factor:   winner.Multiplier,
			Source:   TimeFactorSourceCustomRule,
			RuleID:   winner.ID,
			RuleName: winner.Name,
			Priority: winner.Priority,
		}
	}
	return TimeFactorResult{Factor: NeutralFactor, Source: TimeFactorSourceNeutral}
}

// ResolveCityFactor validates a demand figure, falling back to the neutral
// factor with a note when the figure is missing or implausible.
func ResolveCityFactor(factor *float64) (float64, string) {
	if factor == nil {
		return NeutralFactor, "city demand factor unavailable; using neutral 1.0"
	}
	if *factor <= 0 {
		return NeutralFactor, "city demand factor is not positive; using neutral 1.0"
	}
	return *factor, ""
}
