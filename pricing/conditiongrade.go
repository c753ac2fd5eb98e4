// Package pricing implements the pure computation core of the rental pricing
// engine: base-rate calculation, factor resolution, per-day pricing, calendar
// generation and suggestion strategies. Nothing in this package touches the
// database or the network; callers feed it snapshots and collaborator data.
package pricing

import "time"

// ConditionGrade classifies a vehicle by age into a pricing band.
type ConditionGrade string

const (
	ConditionGradeA ConditionGrade = "A"
	ConditionGradeB ConditionGrade = "B"
	ConditionGradeC ConditionGrade = "C"
	ConditionGradeD ConditionGrade = "D"
)

// IsValid checks if the condition grade is valid
func (g ConditionGrade) IsValid() bool {
	switch g {
	case ConditionGradeA, ConditionGradeB, ConditionGradeC, ConditionGradeD:
		return true
	default:
		return false
	}
}

// GradeBand maps one contiguous age interval (in whole months, inclusive) to a
// condition grade and its price factor. MaxAgeMonths < 0 means open-ended.
type GradeBand struct {
	Grade        ConditionGrade
	Label        string
	MinAgeMonths int
	MaxAgeMonths int
	PriceFactor  float64
}

// GradeBands is the fixed grade table. Bands are contiguous and cover every
// age from zero months up; the last band is open-ended.
var GradeBands = []GradeBand{
	{Grade: ConditionGradeA, Label: "Like new", MinAgeMonths: 0, MaxAgeMonths: 12, PriceFactor: 1.30},
	{Grade: ConditionGradeB, Label: "Good", MinAgeMonths: 13, MaxAgeMonths: 36, PriceFactor: 1.15},
	{Grade: ConditionGradeC, Label: "Fair", MinAgeMonths: 37, MaxAgeMonths: 60, PriceFactor: 0.90},
	{Grade: ConditionGradeD, Label: "Aged", MinAgeMonths: 61, MaxAgeMonths: -1, PriceFactor: 0.75},
}

// AgeInMonths returns the vehicle age in whole months at the reference time.
// Partial months are floored and the result is never negative.
func AgeInMonths(purchaseDate, now time.Time) int {
	if !purchaseDate.Before(now) {
		return 0
	}
	months := (now.Year()-purchaseDate.Year())*12 + int(now.Month()) - int(purchaseDate.Month())
	if now.Day() < purchaseDate.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// GradeForAge returns the grade band covering the given age in months.
func GradeForAge(ageMonths int) GradeBand {
	if ageMonths < 0 {
		ageMonths = 0
	}
	for _, b := range GradeBands {
		if ageMonths >= b.MinAgeMonths && (b.MaxAgeMonths < 0 || ageMonths <= b.MaxAgeMonths) {
			return b
		}
	}
	// unreachable while the table covers all ages
	return GradeBands[len(GradeBands)-1]
}

// DetectGrade classifies a vehicle purchased at purchaseDate as of now.
func DetectGrade(purchaseDate, now time.Time) GradeBand {
	return GradeForAge(AgeInMonths(purchaseDate, now))
}

// BandForGrade looks up the band of an explicitly supplied grade.
func BandForGrade(grade ConditionGrade) (GradeBand, bool) {
	for _, b := range GradeBands {
		if b.Grade == grade {
			return b, true
		}
	}
	return GradeBand{}, false
}
