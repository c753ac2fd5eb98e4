package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeForAge(t *testing.T) {
	cases := []struct {
		ageMonths int
		grade     ConditionGrade
		factor    float64
	}{
		{0, ConditionGradeA, 1.30},
		{12, ConditionGradeA, 1.30},
		{13, ConditionGradeB, 1.15},
		{36, ConditionGradeB, 1.15},
		{37, ConditionGradeC, 0.90},
		{60, ConditionGradeC, 0.90},
		{61, ConditionGradeD, 0.75},
		{240, ConditionGradeD, 0.75},
		{-5, ConditionGradeA, 1.30},
	}

	for _, tc := range cases {
		band := GradeForAge(tc.ageMonths)
		assert.Equal(t, tc.grade, band.Grade, "age %d months", tc.ageMonths)
		assert.Equal(t, tc.factor, band.PriceFactor, "age %d months", tc.ageMonths)
	}
}

func TestGradeBandsAreContiguous(t *testing.T) {
	require.NotEmpty(t, GradeBands)
	assert.Equal(t, 0, GradeBands[0].MinAgeMonths)
	for i := 1; i < len(GradeBands); i++ {
		assert.Equal(t, GradeBands[i-1].MaxAgeMonths+1, GradeBands[i].MinAgeMonths,
			"gap between band %s and %s", GradeBands[i-1].Grade, GradeBands[i].Grade)
	}
	assert.Equal(t, -1, GradeBands[len(GradeBands)-1].MaxAgeMonths, "last band must be open-ended")
}

func TestAgeInMonths(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	t.Run("WholeMonths", func(t *testing.T) {
		assert.Equal(t, 14, AgeInMonths(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), now))
	})

	t.Run("PartialMonthFloored", func(t *testing.T) {
		assert.Equal(t, 13, AgeInMonths(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), now))
	})

	t.Run("SameDayIsZero", func(t *testing.T) {
		assert.Equal(t, 0, AgeInMonths(now, now))
	})

	t.Run("FutureDateIsZero", func(t *testing.T) {
		assert.Equal(t, 0, AgeInMonths(now.AddDate(1, 0, 0), now))
	})
}

func TestDetectGrade(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	band := DetectGrade(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), now)
	assert.Equal(t, ConditionGradeA, band.Grade)

	band = DetectGrade(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), now)
	assert.Equal(t, ConditionGradeD, band.Grade)
}

func TestBandForGrade(t *testing.T) {
	band, ok := BandForGrade(ConditionGradeC)
	require.True(t, ok)
	assert.Equal(t, 0.90, band.PriceFactor)

	_, ok = BandForGrade(ConditionGrade("X"))
	assert.False(t, ok)
}

func TestConditionGradeIsValid(t *testing.T) {
	assert.True(t, ConditionGradeA.IsValid())
	assert.True(t, ConditionGradeD.IsValid())
	assert.False(t, ConditionGrade("").IsValid())
	assert.False(t, ConditionGrade("E").IsValid())
}
